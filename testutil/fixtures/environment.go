// Package fixtures 提供测试使用的任务环境与配置样例。
package fixtures

import "github.com/ecmwf/ecflow-light/request"

// Task identity used across tests.
const (
	TaskName     = "/path/to/task"
	TaskPassword = "qwerty"
	TaskRID      = "12345"
	TaskTryNo    = "0"
)

// TaskEnvironment 返回包含完整任务身份的环境
func TaskEnvironment() request.Environment {
	return request.NewEnvironment().
		With(request.EnvTaskName, TaskName).
		With(request.EnvTaskPassword, TaskPassword).
		With(request.EnvTaskRID, TaskRID).
		With(request.EnvTaskTryNo, TaskTryNo)
}

// PhonyEnvironment 返回设置了 NO_ECF 的任务环境
func PhonyEnvironment() request.Environment {
	return TaskEnvironment().With("NO_ECF", "1")
}

// ClientsYAML 构造只包含一个端点的 clients 配置
func ClientsYAML(kind, protocol, host, port string) string {
	return "clients:\n" +
		"  - kind: " + kind + "\n" +
		"    protocol: " + protocol + "\n" +
		"    host: \"" + host + "\"\n" +
		"    port: \"" + port + "\"\n"
}

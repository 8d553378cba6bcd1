/*
Package testutil 提供 ecflow-light 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 文件辅助: WriteFile / WriteExecutable，在 t.TempDir 中生成配置文件
    或替代 ecflow_client 的脚本
  - 异步断言: AssertEventuallyTrue / WaitFor
  - JSON 辅助: MustParseJSON

# 子包

  - testutil/fixtures: 预置的任务环境与 YAML 配置样例
  - testutil/mocks: 记录调用并可注入错误的 Dispatcher
*/
package testutil

/*
Package main 提供 ecflow_light_client 命令行工具。

# 概述

在 ecFlow 任务脚本中调用，把 meter、label、event、queue 更新以及
init/complete/abort/wait 状态变更发送到 IFS_ECF_CONFIG_PATH 配置的
所有端点。命令名前的短横线可省略，因此 `--meter NAME VALUE` 与
`meter NAME VALUE` 等价。

成功退出码为 0，任何端点失败或参数错误退出码为 1。
*/
package main

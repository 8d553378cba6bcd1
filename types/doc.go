// Copyright (c) ecflow-light Authors.
// Licensed under the MIT License.

/*
Package types 提供 ecflow-light 的全局共享错误类型。

# 概述

types 是最底层的公共包，不依赖任何内部包。request、config、dispatch、
client 等上层模块通过 Error / ErrorCode 报告失败，调用边界（根包与
命令行工具）再把错误统一转换为退出码。

# 错误码

  - ENVIRONMENT_VARIABLE_NOT_FOUND — Environment.Get 找不到变量
  - OPTION_NOT_FOUND               — Options.Get 找不到选项
  - INVALID_ENVIRONMENT            — 任务身份变量缺失
  - INVALID_CONFIGURATION          — 配置文件缺失或无法解析
  - INVALID_REQUEST                — 请求无法发送（如 UDP 包过大）
  - NOT_IMPLEMENTED                — 协议不支持该请求类型
  - BAD_VALUE                      — 参数值非法
  - TRANSPORT                      — 网络、HTTP 或子进程失败

# 错误工具链

  - NewError / Errorf 构造，WithCause / WithHTTPStatus / WithExitCode / WithEndpoint 补充上下文
  - AsError / GetErrorCode / IsErrorCode 沿错误链（含 errors.Join）查找
*/
package types

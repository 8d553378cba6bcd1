/*
包 metrics 提供基于 Prometheus 的分发指标采集能力。

# 概述

Collector 通过 promauto.With(reg) 注册到调用方提供的 Registry，
命令行工具在退出前用 WriteTextfile 把指标写成 node_exporter 的
textfile 格式，适合短生命周期的任务进程。

# 指标

  - dispatch_total{protocol,kind,status}：每个端点的分发次数
  - dispatch_duration_seconds{protocol}：分发耗时
  - payload_size_bytes{protocol}：发送的负载大小
  - endpoints_configured：配置解析出的端点数量
  - configuration_errors_total：配置解析失败次数
*/
package metrics

// Package config 提供 ecflow-light 的配置管理功能。
//
// 包含两部分：
//   - Loader：从默认值、YAML 文件（IFS_ECF_CONFIG_PATH）和 ECFLOW_LIGHT_*
//     环境变量加载日志、指标、遥测等全局设置；
//   - Resolve：根据任务环境解析出通知端点列表（ClientCfg），处理
//     NO_ECF 等退出变量、$ENV{NAME} 占位符替换和不支持的组合。
package config

// Package tlsutil 为 HTTP 通知端点提供集中式 TLS 配置（TLS 1.2+，仅 AEAD 密码套件）。
// 证书校验默认开启，只有在端点配置中显式写 insecure: true 时才会关闭。
package tlsutil

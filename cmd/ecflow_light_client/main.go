// =============================================================================
// ecflow_light_client 主入口
// =============================================================================
// 任务通知命令行工具
//
// 使用方法:
//
//	ecflow_light_client meter progress 42
//	ecflow_light_client --label info "half way"
//	ecflow_light_client event ready clear
//	ecflow_light_client abort "disk full"
//	ecflow_light_client version
// =============================================================================
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/client"
	"github.com/ecmwf/ecflow-light/internal/bootstrap"
	"github.com/ecmwf/ecflow-light/request"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return 1
	}

	switch cmd.name {
	case "version":
		printVersion(stdout)
		return 0
	case "help":
		printUsage(stdout)
		return 0
	}

	env := request.LoadEnvironment()
	rt, err := bootstrap.Start(env)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := rt.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewConfigured(env, rt.ClientOptions()...)
	resp, err := execute(ctx, c, cmd)

	if closeErr := c.Close(); closeErr != nil {
		logger.Warn("failed to close endpoints", zap.Error(closeErr))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if closeErr := rt.Close(shutdownCtx); closeErr != nil {
		logger.Warn("failed to flush metrics or traces", zap.Error(closeErr))
	}

	if err != nil {
		logger.Error("request failed", zap.String("command", cmd.name), zap.Error(err))
		return 1
	}
	logger.Debug("request processed",
		zap.String("command", cmd.name),
		zap.Int("endpoints", len(resp.Results)))
	return 0
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "\n  Using ecFlow Light (%s)\n", Version)
	fmt.Fprintf(w, "    Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "    Git Commit: %s\n\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ecflow_light_client - ecFlow task notifications

Usage:
  ecflow_light_client <command> [arguments]

Commands:
  meter NAME VALUE               Update meter (VALUE is an integer)
  label NAME VALUE               Update label
  event NAME [set|clear]         Update event (default: set)
  queue NAME ACTION [STEP] [PATH]
                                 Update queue
  init [PROCESS_ID]              Signal task initialisation
  complete                       Signal task completion
  abort [REASON]                 Signal task abortion
  wait EXPRESSION                Wait for a trigger expression
  version                        Show version information
  help                           Show this help message

Commands may be written with leading dashes, e.g. --meter NAME VALUE.

Environment:
  ECF_NAME, ECF_PASS, ECF_RID, ECF_TRYNO   Task identity (required)
  IFS_ECF_CONFIG_PATH                      YAML endpoint configuration
  NO_ECF                                   Skip all notifications`)
}

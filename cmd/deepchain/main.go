package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"deepchain/internal/cli"
	"deepchain/internal/config"
	"deepchain/internal/svc"
)

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func readQuestion(flagValue string, args []string) (string, error) {
	if q := strings.TrimSpace(flagValue); q != "" {
		return q, nil
	}
	if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
		return q, nil
	}

	fmt.Print("🤔 Enter your question: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func main() {
	var (
		configPath = flag.String("f", "etc/deepchain.yaml", "path to main configuration")
		question   = flag.String("question", "", "question to reason about (falls back to args, then an interactive prompt)")
		noVerify   = flag.Bool("no-verify", false, "skip the cross-check stage even when configured")
		jsonOut    = flag.Bool("json", false, "emit a machine-readable result block after the report")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	cli.LogConfigSummary(cfg)

	svcCtx, err := svc.NewServiceContext(cfg)
	if err != nil {
		fatalf("%v", err)
	}
	defer func() {
		_ = svcCtx.Close()
	}()

	console := cli.NewConsole(os.Stdout)
	console.Header("🤖 Deep Reasoning Chain 🤖")
	console.Section("Status", strings.Join([]string{
		fmt.Sprintf("Gateway API Key: %s", cli.Checkmark(cfg.LLM.Value.APIKey != "")),
		fmt.Sprintf("Verifier API Key: %s", cli.Checkmark(svcCtx.VerifierEnabled())),
	}, "\n"))

	q, err := readQuestion(*question, flag.Args())
	if err != nil {
		fatalf("%v", err)
	}
	if q == "" {
		fatalf("no question provided; use -question or pass it as arguments")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logx.Infof("received signal %s, cancelling in-flight requests", sig)
		cancel()
	}()

	console.Header("Question")
	console.Section("Input", q)

	outcome, err := svcCtx.Reasoner.GetReasonedAnswer(ctx, q)
	if err != nil {
		if outcome == nil {
			fatalf("reasoner stage failed: %v", err)
		}
		// Transport failures still yield a degraded outcome; report the error
		// and keep going so the cross-check can weigh in on its own.
		logx.Errorf("reasoner stage failed: %v", err)
		console.Section("Error", err.Error())
	}

	console.Header("Reasoner Analysis 🔍")
	console.Section("Reasoning Process", outcome.Result.Reasoning)
	console.Section("Initial Answer", outcome.Result.Answer)

	payload := cli.ResultPayload{
		Question:  q,
		Model:     outcome.Model,
		Reasoning: outcome.Result.Reasoning,
		Answer:    outcome.Result.Answer,
	}

	if !*noVerify && svcCtx.VerifierEnabled() {
		console.Header("Cross-Check Analysis 🤔")

		verification, verr := svcCtx.Verifier.Verify(ctx, q, outcome.Result.Reasoning)
		if verr != nil {
			logx.Errorf("cross-check stage failed: %v", verr)
			console.Section("Error", verr.Error())
		} else {
			console.Section("Prompt", verification.Prompt)
			console.Section("Response", verification.Answer)

			console.Header("Final Comparison 🎯")
			console.Section("Reasoner's Answer", outcome.Result.Answer)
			console.Section("Verifier's Answer", verification.Answer)

			payload.Verification = &cli.VerificationPayload{
				Model:  verification.Model,
				Answer: verification.Answer,
			}
		}
	}

	if *jsonOut {
		if err := console.WriteResult(payload); err != nil {
			fatalf("write result: %v", err)
		}
	}
}

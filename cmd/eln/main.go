package main

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/dsnakex/Dashboard-ELN/cmd/eln/helper"
)

// @title						Dashboard ELN API
// @version						1.0.0
// @description					This is the API server for Dashboard ELN, an electronic lab notebook for research teams.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Log in via /v1/auth/login and pass 'Bearer ${TOKEN}' to access protected endpoints
func main() {
	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	registerConfig, err := configInit.InitializeRegisterConfig(context.Background())
	if err != nil {
		klog.Fatalf("Failed to register config: %s\n", err)
	}

	scans := configInit.NewScanManager(registerConfig)
	if err := scans.Start(); err != nil {
		klog.Fatalf("Failed to start inventory scans: %s\n", err)
	}
	defer scans.Stop()

	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartMetricsServer()
	serverRunner.StartServer(registerConfig)
}

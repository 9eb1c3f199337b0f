package main

import (
	"context"

	"github.com/shandysiswandi/otpguard/internal/app"
)

// @title           OTPGuard API
// @version         1.0
// @description     OTPGuard issues and verifies one-time passcodes with rate limiting, lockout and an audit trail.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), application.ShutdownTimeout())
	defer cancel()

	application.Stop(ctx)
}

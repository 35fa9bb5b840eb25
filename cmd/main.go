package main

import (
	"go-blog-api/app"
	"os"
)

// @title           Go Blog API
// @version         1.0
// @description     Blog backend with posts, comments and JWT sessions.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configDir := os.Getenv("BLOG_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	app.Run(configDir)
}

// Package api provides the read-only REST API for marketsync
// @title marketsync API
// @version 1.0
// @description REST API for querying marketplace state indexed by marketsync
// @contact.name API Support
// @contact.url https://github.com/dework-labs/marketsync
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api

package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
)

// PrometheusMiddleware creates a mediator middleware that records command
// execution metrics: duration histogram plus success/failure counts.
//
// Command names are extracted via reflection and stripped of package
// prefixes, so "*optimizer.RunOptimizationCommand" becomes
// "RunOptimizationCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		duration := time.Since(start).Seconds()
		collector.RecordCommandExecution(commandName, duration, err == nil)

		return response, err
	}
}

// extractCommandName turns a request value into its bare type name, for
// example "*ingest.ImportDatasetCommand" into "ImportDatasetCommand".
func extractCommandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	fullName := reflect.TypeOf(request).String()
	fullName = strings.TrimPrefix(fullName, "*")

	parts := strings.Split(fullName, ".")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return fullName
}

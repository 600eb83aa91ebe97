package solbc

import (
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// ErrorAnalyzer extracts the node's diagnostic details from RPC errors for logging
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// AnalyzeRPCError analyzes a jsonrpc.RPCError and extracts detailed information
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{
			"error": "No error provided",
		}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return map[string]interface{}{
			"type":    "generic_error",
			"message": err.Error(),
		}
	}

	result := map[string]interface{}{
		"type":    "rpc_error",
		"code":    rpcErr.Code,
		"message": rpcErr.Message,
	}

	if strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		result["simulation_failed"] = true
	}

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return result
	}

	if logs, ok := dataMap["logs"].([]interface{}); ok {
		result["logs"] = logs
		// SPL Token пишет причину отказа как "Program log: Error: ..."
		for _, entry := range logs {
			if line, ok := entry.(string); ok && strings.HasPrefix(line, "Program log: Error: ") {
				result["program_error"] = strings.TrimPrefix(line, "Program log: Error: ")
				break
			}
		}
	}

	if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
		result["instruction_error"] = instrErr
	}

	return result
}

// Fields returns the analysis as zap fields.
func (ea *ErrorAnalyzer) Fields(err error) []zap.Field {
	analysis := ea.AnalyzeRPCError(err)
	fields := make([]zap.Field, 0, len(analysis))
	for _, k := range []string{"type", "code", "message", "simulation_failed", "program_error", "instruction_error", "logs"} {
		if v, ok := analysis[k]; ok {
			fields = append(fields, zap.Any(k, v))
		}
	}
	return fields
}

// Log writes the analysis of err at warn level.
func (ea *ErrorAnalyzer) Log(msg string, err error) {
	ea.logger.Warn(msg, ea.Fields(err)...)
}

package godoo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// executeRPC calls execute_kw on the object endpoint.
//
// kolo/xmlrpc calls cannot be cancelled, so the call runs in its own goroutine
// and ctx only bounds how long the caller waits for it.
//
// Parameters:
//   - ctx: bounds the wait for the call.
//   - model: the Odoo model name.
//   - method: the model method (search_read, read_group, name_get, ...).
//   - args: positional arguments of the method.
//   - options: keyword arguments; an empty map is sent when nil.
//   - reply: pointer the response is decoded into.
func (c *OdooClient) executeRPC(ctx context.Context, model, method string, args []interface{}, options map[string]interface{}, reply interface{}) error {
	uid, rpcClient, err := c.getConnection(ctx)
	if err != nil {
		c.logger.Error("Failed to get Odoo connection for RPC call",
			zap.Error(err),
			zap.String("model", model),
			zap.String("method", method),
		)
		return err
	}

	if options == nil {
		options = map[string]interface{}{}
	}
	callArgs := []interface{}{c.db, uid, c.password, model, method, args, options}

	callChan := make(chan error, 1)
	go func() {
		callChan <- rpcClient.Call("execute_kw", callArgs, reply)
	}()

	select {
	case <-ctx.Done():
		c.logger.Error("Odoo RPC call cancelled by context",
			zap.Error(ctx.Err()),
			zap.String("model", model),
			zap.String("method", method),
		)
		return ctx.Err()
	case err = <-callChan:
		if err != nil {
			c.logger.Error("Failed to execute Odoo RPC call",
				zap.Error(err),
				zap.String("model", model),
				zap.String("method", method),
			)
			return parseOdooRPCError(fmt.Errorf("failed to call Odoo method '%s' on model '%s': %w", method, model, err))
		}
	}
	return nil
}

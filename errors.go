// godoo/errors.go
package godoo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrAuthenticationFailed indica que la autenticación con Odoo falló.
	ErrAuthenticationFailed = errors.New("godoo: authentication failed")

	// ErrRecordNotFound indica que no se encontró ningún registro para los criterios dados.
	ErrRecordNotFound = errors.New("godoo: no record found for the given criteria")

	// ErrInvalidModel indica que el modelo de Odoo especificado no existe o es inválido.
	ErrInvalidModel = errors.New("godoo: invalid Odoo model")

	// ErrInvalidMethod indica que el método especificado no existe para el modelo de Odoo dado.
	ErrInvalidMethod = errors.New("godoo: invalid Odoo method for the model")

	// ErrOdooRPC es un error genérico para cualquier fallo en la llamada XML-RPC a Odoo,
	// cuando no se puede clasificar más específicamente. El error subyacente estará envuelto.
	ErrOdooRPC = errors.New("godoo: Odoo XML-RPC call failed")

	// ErrInvalidResponse is returned when the response has an unexpected shape.
	ErrInvalidResponse = errors.New("godoo: invalid Odoo RPC response")
)

// OdooRPCError representa un fault devuelto por el servidor Odoo XML-RPC.
// Envuelve el error original del cliente XML-RPC.
type OdooRPCError struct {
	OriginalError error
	Code          int
	Message       string
}

func (e *OdooRPCError) Error() string {
	if e.OriginalError != nil {
		return fmt.Sprintf("%s: %s (original: %v)", ErrOdooRPC, e.Message, e.OriginalError)
	}
	return fmt.Sprintf("%s: %s", ErrOdooRPC, e.Message)
}

func (e *OdooRPCError) Unwrap() error {
	return e.OriginalError
}

// Is makes errors.Is(err, ErrOdooRPC) hold for every server fault.
func (e *OdooRPCError) Is(target error) bool {
	return target == ErrOdooRPC
}

// faultRe matches both "Fault(1): msg", as kolo/xmlrpc formats faults, and
// the "<Fault 1: 'msg'>" form of Python clients.
var faultRe = regexp.MustCompile(`(?s)Fault\(?\s?(\d+)\)?: '?(.*?)'?>?$`)

// parseOdooRPCError intenta clasificar un error del cliente XML-RPC; la librería
// 'kolo/xmlrpc' a menudo solo devuelve el fault como texto ("XML-RPC fault: <Fault 1: 'Access denied'>").
func parseOdooRPCError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	faultCode := 0
	faultMessage := errMsg
	if matches := faultRe.FindStringSubmatch(errMsg); len(matches) == 3 {
		if code, cerr := strconv.Atoi(matches[1]); cerr == nil {
			faultCode = code
		}
		faultMessage = matches[2]
	} else if strings.HasPrefix(errMsg, "XML-RPC fault: ") {
		faultMessage = strings.TrimPrefix(errMsg, "XML-RPC fault: ")
	}

	if strings.Contains(faultMessage, "The model does not exist") ||
		strings.Contains(faultMessage, "No model named") ||
		strings.Contains(faultMessage, "not found in registry") ||
		(strings.Contains(faultMessage, "'object' object has no attribute") && strings.Contains(faultMessage, "model")) {
		return fmt.Errorf("%w: %s (original: %w)", ErrInvalidModel, faultMessage, err)
	}

	if strings.Contains(faultMessage, "Object has no method") ||
		strings.Contains(faultMessage, "method does not exist") ||
		(strings.Contains(faultMessage, "missing 1 required positional argument") && strings.Contains(faultMessage, "self")) {
		return fmt.Errorf("%w: %s (original: %w)", ErrInvalidMethod, faultMessage, err)
	}

	return &OdooRPCError{
		OriginalError: err,
		Code:          faultCode,
		Message:       faultMessage,
	}
}

package bb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifica a causa de uma falha
type ErrorKind string

const (
	KindConnectivity ErrorKind = "connectivity" // rede, timeout ou 5xx
	KindValidation   ErrorKind = "validation"   // requisição rejeitada pelo banco (4xx)
	KindAuth         ErrorKind = "auth"         // token ou credenciais inválidos (401/403)
	KindUnknown      ErrorKind = "unknown"
)

// Erros sentinela, um por categoria. Use errors.Is.
var (
	ErrConnectivity = errors.New("bb: falha de comunicação")
	ErrValidation   = errors.New("bb: requisição inválida")
	ErrAuth         = errors.New("bb: não autorizado")
	ErrUnknown      = errors.New("bb: erro desconhecido")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConnectivity:
		return ErrConnectivity
	case KindValidation:
		return ErrValidation
	case KindAuth:
		return ErrAuth
	}
	return ErrUnknown
}

// kindForStatus mapeia um status HTTP de erro para a categoria
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 500:
		return KindConnectivity
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return KindConnectivity
	case status >= 400:
		return KindValidation
	}
	return KindUnknown
}

// classify descobre a categoria de um erro devolvido por apiClient.do
func classify(err error) (ErrorKind, int) {
	if f, ok := asFailure(err); ok {
		return f.Kind, f.Status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusHTTP()
		return kindForStatus(status), status
	}
	for _, k := range []ErrorKind{KindConnectivity, KindValidation, KindAuth} {
		if errors.Is(err, k.sentinel()) {
			return k, 0
		}
	}
	return KindUnknown, 0
}

// failure guarda os dados comuns aos erros tipados do pacote
type failure struct {
	Code    int
	Kind    ErrorKind
	Status  int // status HTTP, 0 quando a resposta não chegou
	Message string
	Err     error
}

func newFailure(code int, prefix string, err error) failure {
	kind, status := classify(err)
	return failure{
		Code:    code,
		Kind:    kind,
		Status:  status,
		Message: fmt.Sprintf("%s: %v", prefix, err),
		Err:     err,
	}
}

func (f *failure) Error() string {
	return fmt.Sprintf("[%d] %s", f.Code, f.Message)
}

// Unwrap expõe a causa original e o sentinela da categoria
func (f *failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.sentinel()}
	}
	return []error{f.Kind.sentinel(), f.Err}
}

// CreatePixChargeError é devolvido por qualquer falha ao criar cobrança.
// Code é sempre CodeCreatePixChargeFailed; Kind diferencia a causa.
type CreatePixChargeError struct {
	failure
}

func newCreatePixChargeError(err error) *CreatePixChargeError {
	return &CreatePixChargeError{newFailure(CodeCreatePixChargeFailed, "erro ao criar cobrança PIX", err)}
}

// QueryPixChargeError é devolvido por falhas na consulta de cobrança
type QueryPixChargeError struct {
	failure
}

func newQueryPixChargeError(err error) *QueryPixChargeError {
	return &QueryPixChargeError{newFailure(CodeQueryPixChargeFailed, "erro ao consultar cobrança PIX", err)}
}

// AuthenticationError é devolvido por falhas na obtenção do token OAuth
type AuthenticationError struct {
	failure
}

func newAuthenticationError(err error) *AuthenticationError {
	f := newFailure(CodeAuthenticationFailed, "erro de autenticação", err)
	// Qualquer 4xx no endpoint OAuth significa credencial rejeitada
	if f.Kind == KindValidation {
		f.Kind = KindAuth
	}
	return &AuthenticationError{f}
}

// ErrorCode extrai o código estável de um erro do pacote (0 se não houver)
func ErrorCode(err error) int {
	if k, ok := asFailure(err); ok {
		return k.Code
	}
	return 0
}

// KindOf retorna a categoria de um erro do pacote
func KindOf(err error) ErrorKind {
	if k, ok := asFailure(err); ok {
		return k.Kind
	}
	kind, _ := classify(err)
	return kind
}

func asFailure(err error) (*failure, bool) {
	var createErr *CreatePixChargeError
	if errors.As(err, &createErr) {
		return &createErr.failure, true
	}
	var queryErr *QueryPixChargeError
	if errors.As(err, &queryErr) {
		return &queryErr.failure, true
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return &authErr.failure, true
	}
	return nil, false
}

// IsConnectivity retorna true se a falha foi de rede, timeout ou indisponibilidade
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// IsValidation retorna true se o banco rejeitou os dados enviados
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAuth retorna true se o token ou as credenciais foram rejeitados
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsNotFound retorna true se o banco respondeu 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusHTTP() == http.StatusNotFound
	}
	return false
}

const maxErrorBody = 512

// parseAPIError interpreta o corpo de uma resposta de erro
func parseAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		detail := strings.TrimSpace(string(body))
		if len(detail) > maxErrorBody {
			detail = detail[:maxErrorBody]
		}
		apiErr = APIError{Detail: detail}
	}
	apiErr.HTTPStatus = status
	return &apiErr
}

// WrapAPIError envolve um erro com contexto adicional
func WrapAPIError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("bb %s: %w", operation, err)
}

package bb

import "time"

const (
	// Produção
	PixURLProd   = "https://api-pix.bb.com.br/pix/v2"
	OAuthURLProd = "https://oauth.bb.com.br/oauth/token"

	// Sandbox/Homologação
	PixURLSandbox   = "https://api.hm.bb.com.br/pix/v2"
	OAuthURLSandbox = "https://oauth.hm.bb.com.br/oauth/token"
)

const (
	// Parâmetro de query com a chave da aplicação do desenvolvedor
	AppKeyParamProd    = "gw-app-key"
	AppKeyParamSandbox = "gw-dev-app-key"
)

// DefaultTimeout limita cada chamada quando GatewayConfig.Timeout não é informado
const DefaultTimeout = 30 * time.Second

// DefaultScopes são os escopos OAuth necessários para cobranças imediatas
var DefaultScopes = []string{"cob.write", "cob.read", "pix.read", "pix.write"}

// Códigos estáveis expostos aos chamadores
const (
	CodeAuthenticationFailed  = 1000
	CodeCreatePixChargeFailed = 1001
	CodeQueryPixChargeFailed  = 1002
)

// Nomes de operação usados em logs, métricas e spans
const (
	opAuthenticate    = "authenticate"
	opCreateCharge    = "create_charge"
	opGetCharge       = "get_charge"
	opRegisterWebhook = "register_webhook"
	opGetWebhook      = "get_webhook"
)

package bb

import (
	"fmt"
	"strings"
	"time"
)

// TokenResponse representa a resposta do endpoint OAuth2
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// PixCalendario define o calendário de uma cobrança PIX
type PixCalendario struct {
	Criacao   string `json:"criacao,omitempty"`
	Expiracao int    `json:"expiracao"` // Tempo em segundos até expirar
}

// PixDevedor representa os dados do devedor/pagador
type PixDevedor struct {
	CPF  string `json:"cpf,omitempty"`
	CNPJ string `json:"cnpj,omitempty"`
	Nome string `json:"nome,omitempty"`
}

// PixValor representa o valor da cobrança
type PixValor struct {
	Original string `json:"original"` // Valor como string com 2 casas decimais (ex: "100.00")
}

// PixInfoAdicional representa informações adicionais do PIX
type PixInfoAdicional struct {
	Nome  string `json:"nome"`
	Valor string `json:"valor"`
}

// CobRequest representa o corpo de POST /cob e PUT /cob/{txid}
type CobRequest struct {
	Calendario     PixCalendario      `json:"calendario"`
	Devedor        *PixDevedor        `json:"devedor,omitempty"`
	Valor          PixValor           `json:"valor"`
	Chave          string             `json:"chave"` // Chave PIX do recebedor
	SolicitacaoPag string             `json:"solicitacaoPagador,omitempty"`
	InfoAdicionais []PixInfoAdicional `json:"infoAdicionais,omitempty"`
}

// CobResponse representa uma cobrança imediata retornada pelo banco
type CobResponse struct {
	Calendario    PixCalendario `json:"calendario"`
	TxID          string        `json:"txid"`
	Revisao       int           `json:"revisao"`
	Location      string        `json:"location,omitempty"`
	Status        string        `json:"status"` // ATIVA, CONCLUIDA, REMOVIDA_PELO_USUARIO_RECEBEDOR, REMOVIDA_PELO_PSP
	Devedor       *PixDevedor   `json:"devedor,omitempty"`
	Valor         PixValor      `json:"valor"`
	Chave         string        `json:"chave"`
	PixCopiaECola string        `json:"pixCopiaECola,omitempty"`

	// Versões antigas da API retornam o copia e cola neste campo
	TextoImagemQRcode string `json:"textoImagemQRcode,omitempty"`
}

// CopyPasteKey retorna o copia e cola, qualquer que seja o campo usado
func (r *CobResponse) CopyPasteKey() string {
	if r.PixCopiaECola != "" {
		return r.PixCopiaECola
	}
	return r.TextoImagemQRcode
}

// WebhookRequest é o corpo do PUT /webhook/{chave}
type WebhookRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

// PixWebhookPayload representa o payload recebido em um webhook PIX
type PixWebhookPayload struct {
	Pix []PixRecebido `json:"pix"`
}

// PixRecebido representa um PIX recebido notificado via webhook
type PixRecebido struct {
	EndToEndID  string    `json:"endToEndId"`
	TxID        string    `json:"txid"`
	Chave       string    `json:"chave"`
	Valor       string    `json:"valor"`
	Horario     time.Time `json:"horario"`
	InfoPagador string    `json:"infoPagador,omitempty"`
}

// Violacao detalha um campo rejeitado pelo banco
type Violacao struct {
	Razao       string `json:"razao"`
	Propriedade string `json:"propriedade"`
}

// APIErrorItem é o formato de erro do gateway do BB
type APIErrorItem struct {
	Codigo     string `json:"codigo"`
	Versao     string `json:"versao,omitempty"`
	Mensagem   string `json:"mensagem"`
	Ocorrencia string `json:"ocorrencia,omitempty"`
}

// APIError representa um erro retornado pela API do BB.
//
// O banco usa formatos diferentes conforme a camada que rejeitou a chamada:
// problem details do BACEN (type/title/detail/violacoes), lista "erros" do
// gateway, erro OAuth (error/error_description) e statusCode/message.
type APIError struct {
	Type      string     `json:"type,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    int        `json:"status,omitempty"`
	Detail    string     `json:"detail,omitempty"`
	Violacoes []Violacao `json:"violacoes,omitempty"`

	Erros []APIErrorItem `json:"erros,omitempty"`

	ErrorName        string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`

	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message,omitempty"`

	// HTTPStatus é o status da resposta, preenchido pelo cliente
	HTTPStatus int `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	msg := e.message()
	if len(e.Violacoes) > 0 {
		parts := make([]string, 0, len(e.Violacoes))
		for _, v := range e.Violacoes {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Propriedade, v.Razao))
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	return msg
}

func (e *APIError) message() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	case len(e.Erros) > 0 && e.Erros[0].Mensagem != "":
		return e.Erros[0].Mensagem
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Message != "":
		return e.Message
	case e.ErrorName != "":
		return e.ErrorName
	}
	return fmt.Sprintf("status %d", e.StatusHTTP())
}

// StatusHTTP retorna o status mais confiável disponível
func (e *APIError) StatusHTTP() int {
	switch {
	case e.HTTPStatus != 0:
		return e.HTTPStatus
	case e.Status != 0:
		return e.Status
	}
	return e.StatusCode
}

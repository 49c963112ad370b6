// Package bb implementa o adaptador para a API PIX do Banco do Brasil.
//
// Este pacote implementa:
//   - Autenticação OAuth2 client-credentials (com cache de token)
//   - Criação e consulta de cobranças imediatas (cob)
//   - Registro e recebimento de webhooks de PIX
//
// # Autenticação
//
// A API do BB usa OAuth2 e, em produção, mTLS. Você precisa:
//   - Client ID e Client Secret (do Portal Developers BB)
//   - Developer application key (gw-dev-app-key em homologação)
//   - Certificado .pem (certificado + chave) ou .p12
//
// # Início Rápido
//
//	auth := bb.NewAuthenticationGateway(bb.AuthConfig{
//	    ClientID:     "...",
//	    ClientSecret: "...",
//	    Sandbox:      true,
//	})
//	out, err := auth.Authenticate(ctx)
//
//	gateway := bb.NewCreatePixChargeGateway(out.AccessToken, bb.GatewayConfig{
//	    Sandbox:       true,
//	    ApplicationID: "sua-app-key",
//	})
//	data, _ := domain.NewPixData("João Silva", "01234567890", decimal.NewFromInt(10),
//	    "01234567890", domain.PixKeyTypeCPF, "/app/storage/bb-certificate.pem")
//	result, err := gateway.CreateCharge(ctx, data)
//
// # Tratamento de Erros
//
// Toda falha de CreateCharge é um *CreatePixChargeError com código 1001,
// seja falha de rede ou payload rejeitado. O campo Kind diferencia a causa:
//
//	if bb.IsConnectivity(err) {
//	    // BB fora do ar, timeout ou 5xx
//	}
//	if bb.IsValidation(err) {
//	    // Dados rejeitados pelo banco
//	}
//
// Nenhuma chamada é repetida automaticamente.
package bb

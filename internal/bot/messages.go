package bot

import "fmt"

// User-facing reply texts. Every failure the pipeline can hit maps to one
// of these; raw collaborator errors never reach the user.
const (
	msgLedgerError      = "❌ Erro ao buscar dados financeiros. Tente novamente mais tarde."
	msgModelApology     = "Desculpe, não consegui processar sua pergunta. Tente novamente."
	msgInsufficientData = "Desculpe, não consegui gerar o gráfico. Dados insuficientes."
	msgGenericApology   = "❌ Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente."
	msgRenderFailure    = "Desculpe, não consegui gerar o gráfico. Tente novamente."
)

// accessDeniedMessage carries the caller's own id so they can report it to
// an administrator.
func accessDeniedMessage(chatID int64) string {
	return fmt.Sprintf("⛔ Acesso não autorizado. Seu Chat ID: %d\n\nEntre em contato com o administrador para liberar acesso.", chatID)
}

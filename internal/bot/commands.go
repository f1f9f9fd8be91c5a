package bot

// QuickCommands maps short caller-typed shortcuts to the equivalent
// natural-language question substituted before the model is invoked.
var QuickCommands = map[string]string{
	// Charts
	"/gastos_categoria": "Mostre um gráfico de pizza dos meus gastos por categoria",
	"/gastos_diarios":   "Mostre um gráfico de barras dos meus gastos diários",
	"/resumo_visual":    "Mostre um gráfico de resumo com receitas, despesas e saldo",

	// Queries
	"/saldo":   "Qual é o saldo total de todas as minhas contas?",
	"/extrato": "Mostre minhas últimas transações",
	"/resumo":  "Faça um resumo das minhas finanças deste mês",

	// Credit cards
	"/cartoes": "Quais são meus cartões de crédito e seus limites?",
	"/fatura":  "Mostre a fatura atual do meu cartão de crédito",
	"/faturas": "Mostre o histórico de faturas do cartão",

	// Budget
	"/orcamento": "Mostre o progresso do meu orçamento mensal",
	"/metas":     "Quais são minhas metas de gastos por categoria?",
}

// HelpMessage is the canned reply for /start and /help.
const HelpMessage = `🤖 <b>Assistente Financeiro com IA</b>

Pergunte qualquer coisa sobre suas finanças ou use os comandos rápidos:

📊 <b>Gráficos</b>
/gastos_categoria - Gráfico de pizza por categoria
/gastos_diarios - Gráfico de barras diário
/resumo_visual - Resumo receitas x despesas

💰 <b>Consultas</b>
/saldo - Saldo total das contas
/extrato - Últimas transações
/resumo - Resumo financeiro do mês

💳 <b>Cartões de Crédito</b>
/cartoes - Info dos cartões de crédito
/fatura - Fatura atual do cartão
/faturas - Histórico de faturas

📈 <b>Orçamento</b>
/orcamento - Ver progresso do orçamento mensal
/metas - Metas por categoria

❓ <b>Ou pergunte naturalmente:</b>
"Quanto gastei com alimentação?"
"Qual meu saldo no Nubank?"
"Mostre um gráfico dos meus gastos"
"Registre um gasto de 50 reais com almoço"`

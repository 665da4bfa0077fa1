package payout

import "errors"

// ErrUnbalancedMarket indica um mercado de lado único: com um dos pools
// zerado a razão pari-mutuel é indefinida e nenhum pagamento é computável.
// A liquidação é recusada e a mensagem vai pra DLQ pra análise manual.
var ErrUnbalancedMarket = errors.New("unbalanced market: zero pool on one side")

// ValidatePools verifica se o mercado tem aposta dos dois lados.
// Deve ser chamado antes de qualquer pagamento de resultado decidido.
func ValidatePools(poolWinner, poolLoser int64) error {
	if poolWinner <= 0 || poolLoser <= 0 {
		return ErrUnbalancedMarket
	}
	return nil
}

// WinnerEarning calcula o retorno pari-mutuel de uma aposta vencedora:
// o stake de volta mais a fatia proporcional do pool perdedor.
// Aritmética inteira com floor, sobras ficam com a casa.
func WinnerEarning(stake, poolWinner, poolLoser int64) (int64, error) {
	if err := ValidatePools(poolWinner, poolLoser); err != nil {
		return 0, err
	}
	if stake > poolWinner {
		return 0, ErrUnbalancedMarket
	}
	return stake + (stake*poolLoser)/poolWinner, nil
}

// RefundEarning é o retorno quando a partida termina sem resultado:
// devolve exatamente o que foi apostado.
func RefundEarning(stake int64) int64 { return stake }

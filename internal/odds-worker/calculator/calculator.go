package calculator

// Pools são as somas de stakes por lado do mercado de uma partida
type Pools struct {
	Home int64
	Away int64
}

// Odds são os multiplicadores pari-mutuel implícitos de cada lado.
// A odd de um lado é o que o pool oposto contribui por moeda apostada:
// retorno potencial = stake * (1 + odd).
//
// Com pool zerado de um lado, a odd do lado oposto é indefinida (divisão por
// zero): o flag Available fica false e o valor numérico vale zero. Quem
// consome deve tratar como "odds indisponíveis", nunca como odd 0.
type Odds struct {
	Home          float64
	Away          float64
	HomeAvailable bool
	AwayAvailable bool
}

// Compute deriva as odds correntes a partir dos pools.
// Função pura, recalculada sob demanda; nada de estado nem cache aqui.
func Compute(p Pools) Odds {
	var o Odds
	if p.Home > 0 {
		o.Home = float64(p.Away) / float64(p.Home)
		o.HomeAvailable = true
	}
	if p.Away > 0 {
		o.Away = float64(p.Home) / float64(p.Away)
		o.AwayAvailable = true
	}
	return o
}

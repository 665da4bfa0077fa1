package resolver

import "math/rand"

// Candidate é um usuário elegível ao fallback de seleção automática:
// tem lista ranqueada de times e ainda não selecionou nada pra partida.
type Candidate struct {
	UserID       string
	TeamPrefs    []string // rank = posição no slice, menor índice ganha
	FavoriteHome []string // favoritos do usuário pro time da casa (0 a 2)
	FavoriteAway []string
}

// AutoSelection é a seleção gerada em nome do usuário no lock da partida
type AutoSelection struct {
	UserID    string
	TeamID    string
	Players   []string
	CaptainID string
}

// Resolve aplica as regras do fallback para um candidato:
// escolhe o time melhor ranqueado entre os dois da partida, monta o pool
// com os favoritos de ambos os times e sorteia o capitão no pool.
// Retorna false quando o usuário não ranqueou nenhum dos times ou o pool
// ficou vazio; nesses casos nenhuma seleção é criada.
// O rng é injetado pra deixar o sorteio determinístico em teste.
func Resolve(c Candidate, homeTeamID, awayTeamID string, rng *rand.Rand) (AutoSelection, bool) {
	team, ok := pickTeam(c.TeamPrefs, homeTeamID, awayTeamID)
	if !ok {
		return AutoSelection{}, false
	}

	pool := make([]string, 0, len(c.FavoriteHome)+len(c.FavoriteAway))
	pool = append(pool, c.FavoriteHome...)
	pool = append(pool, c.FavoriteAway...)
	if len(pool) == 0 {
		return AutoSelection{}, false
	}

	captain := pool[rng.Intn(len(pool))]
	return AutoSelection{
		UserID:    c.UserID,
		TeamID:    team,
		Players:   pool,
		CaptainID: captain,
	}, true
}

// pickTeam devolve o time da partida com menor índice na lista ranqueada.
// Só um dos dois ranqueado: esse ganha. Nenhum: não há escolha.
func pickTeam(prefs []string, home, away string) (string, bool) {
	homeIdx, awayIdx := -1, -1
	for i, t := range prefs {
		if t == home && homeIdx < 0 {
			homeIdx = i
		}
		if t == away && awayIdx < 0 {
			awayIdx = i
		}
	}
	switch {
	case homeIdx < 0 && awayIdx < 0:
		return "", false
	case awayIdx < 0:
		return home, true
	case homeIdx < 0:
		return away, true
	case homeIdx < awayIdx:
		return home, true
	default:
		return away, true
	}
}

package engine

import "github.com/crickpool/crickpool/pkg/contracts/events"

// Pesos por unidade de estatística. Corridas valem 1 por definição;
// os demais são as constantes de pontuação do produto.
const (
	RunWeight      int64 = 1
	WicketWeight   int64 = 10
	CatchWeight    int64 = 5
	StumpingWeight int64 = 5
	RunoutWeight   int64 = 5
)

// Bônus por acertar o time vencedor na seleção fantasy.
// Binário por usuário: 10 no acerto, 0 no erro ou sem resultado.
// (O split 5/5 existe só no agregado por time, ver TeamMatchPoints.)
const TeamBonusPoints int64 = 10

// Pontos do agregado por time numa partida
const (
	WinnerTeamPoints   int64 = 10
	LoserTeamPoints    int64 = 0
	NoResultTeamPoints int64 = 5
)

// PlayerStat são as estatísticas brutas de um jogador numa partida
type PlayerStat struct {
	IsPlayed  bool
	Runs      int64
	Wickets   int64
	Catches   int64
	Stumpings int64
	Runouts   int64
}

// Selection é a escolha fantasy de um usuário para uma partida
type Selection struct {
	TeamID  string
	Players []string // exatamente 4
	Captain string   // pertence a Players
}

// PlayerPoints converte estatísticas brutas em pontos derivados.
// Jogador que não entrou em campo não pontua.
func PlayerPoints(s PlayerStat) int64 {
	if !s.IsPlayed {
		return 0
	}
	return s.Runs*RunWeight +
		s.Wickets*WicketWeight +
		s.Catches*CatchWeight +
		s.Stumpings*StumpingWeight +
		s.Runouts*RunoutWeight
}

// TeamBonus é o bônus binário por usuário: selecionou o vencedor ou não
func TeamBonus(selectedTeam, winnerTeam, resultKind string) int64 {
	if resultKind == events.ResultDecided && selectedTeam == winnerTeam {
		return TeamBonusPoints
	}
	return 0
}

// TeamMatchPoints é o agregado por time: 10 pro vencedor, 0 pro perdedor,
// 5/5 quando a partida termina sem resultado
func TeamMatchPoints(teamID, winnerTeam, resultKind string) int64 {
	switch resultKind {
	case events.ResultNoResult:
		return NoResultTeamPoints
	case events.ResultDecided:
		if teamID == winnerTeam {
			return WinnerTeamPoints
		}
		return LoserTeamPoints
	}
	return 0
}

// UserMatchPoints combina bônus de time e pontos dos 4 jogadores
// selecionados, dobrando os pontos do capitão.
// Jogador sem estatística lançada conta como zero.
func UserMatchPoints(sel Selection, playerPoints map[string]int64, teamBonus int64) int64 {
	total := teamBonus
	for _, p := range sel.Players {
		pts := playerPoints[p]
		if p == sel.Captain {
			pts *= 2
		}
		total += pts
	}
	return total
}

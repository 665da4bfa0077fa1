package payout

import "testing"

func TestWinnerEarningProRata(t *testing.T) {
	// Pool vencedor 1000, pool perdedor 500: cada moeda vencedora leva 1.5
	got, err := WinnerEarning(400, 1000, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 600 {
		t.Fatalf("earning = %d, want 600", got)
	}
}

func TestWinnerEarningFloors(t *testing.T) {
	// 100 * 999 / 1000 = 99.9, arredonda pra baixo: sobra fica com a casa
	got, err := WinnerEarning(100, 1000, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 199 {
		t.Fatalf("earning = %d, want 199", got)
	}
}

func TestValidatePools(t *testing.T) {
	if err := ValidatePools(1000, 500); err != nil {
		t.Fatalf("funded market: %v", err)
	}
	if err := ValidatePools(0, 500); err != ErrUnbalancedMarket {
		t.Fatalf("empty winner pool: err = %v, want ErrUnbalancedMarket", err)
	}
	if err := ValidatePools(500, 0); err != ErrUnbalancedMarket {
		t.Fatalf("empty loser pool: err = %v, want ErrUnbalancedMarket", err)
	}
}

func TestWinnerEarningUnbalancedMarket(t *testing.T) {
	if _, err := WinnerEarning(100, 0, 500); err != ErrUnbalancedMarket {
		t.Fatalf("err = %v, want ErrUnbalancedMarket", err)
	}
	if _, err := WinnerEarning(300, 300, 0); err != ErrUnbalancedMarket {
		t.Fatalf("one-sided market: err = %v, want ErrUnbalancedMarket", err)
	}
	if _, err := WinnerEarning(600, 500, 100); err != ErrUnbalancedMarket {
		t.Fatalf("stake above pool: err = %v, want ErrUnbalancedMarket", err)
	}
}

// O total pago aos vencedores nunca excede o mercado inteiro
func TestPayoutNeverExceedsMarket(t *testing.T) {
	winners := []int64{100, 250, 650}
	var poolWinner int64
	for _, s := range winners {
		poolWinner += s
	}
	poolLoser := int64(731)

	var paid int64
	for _, s := range winners {
		e, err := WinnerEarning(s, poolWinner, poolLoser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		paid += e
	}
	if paid > poolWinner+poolLoser {
		t.Fatalf("paid %d exceeds market %d", paid, poolWinner+poolLoser)
	}
}

// Cenário completo: usuário com 5000 aposta 1000 no A (4000), muda pra 1500
// no B (3500); B vence com pools A=3000/B=1500. Retorno 1500*3 = 4500 e o
// saldo final fecha em 8000.
func TestFullWagerLifecycleEarning(t *testing.T) {
	coins := int64(5000)
	coins -= 1000          // aposta inicial no A
	coins += 1000 - 1500   // atualização pra 1500 no B
	if coins != 3500 {
		t.Fatalf("coins after update = %d, want 3500", coins)
	}

	earning, err := WinnerEarning(1500, 1500, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earning != 4500 {
		t.Fatalf("earning = %d, want 4500", earning)
	}
	if coins+earning != 8000 {
		t.Fatalf("final coins = %d, want 8000", coins+earning)
	}
}

func TestRefundEarning(t *testing.T) {
	if got := RefundEarning(450); got != 450 {
		t.Fatalf("refund = %d, want 450", got)
	}
}

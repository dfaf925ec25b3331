package game

import "testing"

// openAuction arms an auction question with the given sums and chooser.
func openAuction(t *testing.T, sums []int, chooser, price int) (*Scheduler, *recorder) {
	t.Helper()
	names := make([]string, len(sums))
	for i := range sums {
		names[i] = string(rune('a' + i))
	}
	s, out := newTestScheduler(names, nil, &fakeNav{})
	sess := s.sess
	sess.Started = true
	for i, sum := range sums {
		sess.Players[i].Sum = sum
	}
	sess.ChooserIndex = chooser
	sess.Question = testQuestion(price)
	sess.CurPrice = price
	s.ScheduleTask(TaskPrintStakeQuestion, 0, 0, true)
	step(t, s, 20)
	return s, out
}

func TestAuctionBiddingOrderAndPriceOut(t *testing.T) {
	s, out := openAuction(t, []int{100, 500, 1000}, 0, 200)
	sess := s.sess

	// Poorest eligible bidder goes first.
	if sess.Decision != DecisionAuctionStakeMaking || sess.StakerIndex != 1 {
		t.Fatalf("Decision = %v staker = %d, want bidding by 1", sess.Decision, sess.StakerIndex)
	}

	if s.ReportStake(1, StakeSum, 150) {
		t.Fatal("bid below current stake accepted")
	}
	if s.ReportStake(1, StakeSum, 600) {
		t.Fatal("bid above player's sum accepted")
	}
	if s.ReportStake(2, StakeSum, 300) {
		t.Fatal("bid by the wrong player accepted")
	}
	if !s.ReportStake(1, StakeSum, 300) {
		t.Fatal("valid raise rejected")
	}
	step(t, s, 20)

	// The outbid chooser cannot come back at 100; the richer player can.
	if sess.AnswererIndex != 1 || sess.Stake != 300 {
		t.Fatalf("holder = %d stake = %d, want 1/300", sess.AnswererIndex, sess.Stake)
	}
	if sess.Players[0].StakeMaking {
		t.Fatal("priced-out chooser still bidding")
	}
	if sess.Decision != DecisionAuctionStakeMaking || sess.StakerIndex != 2 {
		t.Fatalf("next bidder = %d, want 2", sess.StakerIndex)
	}

	if !s.ReportStake(2, StakePass, 0) {
		t.Fatal("pass rejected")
	}
	step(t, s, 20)

	// Auction closed at the holder's stake.
	if sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v after close", sess.Decision)
	}
	if sess.CurPrice != 300 || sess.AnswererIndex != 1 {
		t.Fatalf("CurPrice = %d answerer = %d, want 300/1", sess.CurPrice, sess.AnswererIndex)
	}
	// One slot per participant, opener first.
	if len(sess.Order) != 3 || sess.Order[0] != 0 || sess.Order[1] != 1 || sess.Order[2] != 2 {
		t.Fatalf("Order = %v, want [0 1 2]", sess.Order)
	}
	if err := sess.CheckOrder(); err != nil {
		t.Fatalf("CheckOrder: %v", err)
	}
	// The winner takes the board.
	if sess.ChooserIndex != 1 {
		t.Fatalf("ChooserIndex = %d after close, want the winner 1", sess.ChooserIndex)
	}
	if m, ok := out.lastAll(MsgSetChooser); !ok || m.Args[0] != "1" {
		t.Fatalf("no SETCHOOSER for the auction winner")
	}
	m, ok := out.lastAll(MsgPersonStake)
	if !ok || m.Args[0] != "1" {
		t.Fatalf("closing PERSONSTAKE = %v", m.Args)
	}
}

func TestAuctionAllInAndReraise(t *testing.T) {
	s, _ := openAuction(t, []int{100, 500, 1000}, 0, 200)
	sess := s.sess

	if !s.ReportStake(1, StakeAllIn, 0) {
		t.Fatal("all-in rejected")
	}
	step(t, s, 20)
	if sess.Stake != 500 || sess.AnswererIndex != 1 {
		t.Fatalf("stake = %d holder = %d, want 500/1", sess.Stake, sess.AnswererIndex)
	}

	// Only the richest player can still raise.
	if sess.StakerIndex != 2 {
		t.Fatalf("next bidder = %d, want 2", sess.StakerIndex)
	}
	if !s.ReportStake(2, StakeSum, 600) {
		t.Fatal("re-raise rejected")
	}
	step(t, s, 20)

	// Prior holder has only 500 left, so the auction closes at 600.
	if sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v, want closed auction", sess.Decision)
	}
	if sess.CurPrice != 600 || sess.AnswererIndex != 2 {
		t.Fatalf("CurPrice = %d answerer = %d, want 600/2", sess.CurPrice, sess.AnswererIndex)
	}
}

func TestAuctionNoBiddersClosesAtNominal(t *testing.T) {
	s, _ := openAuction(t, []int{100, 150, 200}, 0, 200)
	sess := s.sess
	// Nobody's sum exceeds the nominal price.
	if sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v, want closed auction", sess.Decision)
	}
	if sess.CurPrice != 200 || sess.AnswererIndex != 0 {
		t.Fatalf("CurPrice = %d answerer = %d, want 200/0", sess.CurPrice, sess.AnswererIndex)
	}
}

func TestAuctionTieGoesToShowman(t *testing.T) {
	s, out := openAuction(t, []int{100, 500, 500}, 0, 200)
	sess := s.sess

	if sess.Decision != DecisionNextPersonStakeMaking {
		t.Fatalf("Decision = %v, want NextPersonStakeMaking", sess.Decision)
	}
	if _, ok := out.lastTo("showman", MsgPersonStake); !ok {
		t.Fatal("showman never asked to break the tie")
	}
	if s.ReportNextStaker(0) {
		t.Fatal("pick outside the tie set accepted")
	}
	if !s.ReportNextStaker(2) {
		t.Fatal("valid tie pick rejected")
	}
	if sess.Decision != DecisionAuctionStakeMaking || sess.StakerIndex != 2 {
		t.Fatalf("staker = %d after pick, want 2", sess.StakerIndex)
	}
}

func TestAuctionTimeoutCountsAsPass(t *testing.T) {
	s, _ := openAuction(t, []int{100, 500, 1000}, 0, 200)
	sess := s.sess

	// Both bid windows expire untouched.
	s.ExecuteScheduled(s.gen)
	step(t, s, 20)
	s.ExecuteScheduled(s.gen)
	step(t, s, 20)

	if sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v, want closed auction", sess.Decision)
	}
	if sess.CurPrice != 200 || sess.AnswererIndex != 0 {
		t.Fatalf("CurPrice = %d answerer = %d, want nominal holder", sess.CurPrice, sess.AnswererIndex)
	}
}

func TestReenteringBidderKeepsSingleOrderSlot(t *testing.T) {
	s, _ := openAuction(t, []int{100, 500, 1000}, 0, 200)
	sess := s.sess

	// 1 raises, 2 overbids, 1 comes back and raises again.
	if !s.ReportStake(1, StakeSum, 300) {
		t.Fatal("first raise rejected")
	}
	step(t, s, 20)
	if !s.ReportStake(2, StakeSum, 400) {
		t.Fatal("overbid rejected")
	}
	step(t, s, 20)
	if sess.StakerIndex != 1 {
		t.Fatalf("re-entry staker = %d, want 1", sess.StakerIndex)
	}
	if !s.ReportStake(1, StakeSum, 450) {
		t.Fatal("re-raise rejected")
	}
	step(t, s, 20)

	if len(sess.Order) != 3 || sess.Order[0] != 0 || sess.Order[1] != 1 || sess.Order[2] != 2 {
		t.Fatalf("Order = %v, want one slot each: [0 1 2]", sess.Order)
	}
	if err := sess.CheckOrder(); err != nil {
		t.Fatalf("CheckOrder: %v", err)
	}
	if sess.MoveBlocked {
		t.Fatal("re-entering bidder parked the machine")
	}
}

func TestConsecutiveBidPromptParksMachine(t *testing.T) {
	s, out := newTestScheduler([]string{"a", "b"}, nil, &fakeNav{})
	s.sess.LastBidder = 1
	s.promptStake(1)
	if !s.sess.MoveBlocked {
		t.Fatal("machine not parked on a repeated prompt")
	}
	if _, ok := out.lastAll(MsgGameError); !ok {
		t.Fatal("no GAMEERROR broadcast")
	}
}

func TestCheckOrderRejectsDuplicateSlots(t *testing.T) {
	sess := NewSession("g", "sm", []string{"a", "b", "c"}, nil)
	sess.Order = []int{0, 2, 1}
	if err := sess.CheckOrder(); err != nil {
		t.Fatalf("CheckOrder on distinct slots: %v", err)
	}
	sess.Order = []int{0, 2, 0}
	if err := sess.CheckOrder(); err == nil {
		t.Fatal("duplicate slot passed CheckOrder")
	}
	sess.Order = []int{0, 3}
	if err := sess.CheckOrder(); err == nil {
		t.Fatal("out-of-range slot passed CheckOrder")
	}
}

package snapshot

import (
	"time"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
	"github.com/lox/holdembet/internal/showdown"
)

// wire carries a snapshot through msgp. Field keys match the JSON names and
// nil slices are written as msgpack nil so they survive a round trip.
type wire struct {
	engine.Snapshot
}

var (
	_ msgp.Encodable = (*wire)(nil)
	_ msgp.Decodable = (*wire)(nil)
)

// EncodeMsg implements msgp.Encodable
func (z *wire) EncodeMsg(w *msgp.Writer) error {
	s := &z.Snapshot
	if err := w.WriteMapHeader(20); err != nil {
		return err
	}

	ints := []struct {
		key string
		val int
	}{
		{"version", s.Version},
		{"handNumber", s.HandNumber},
		{"phase", int(s.Phase)},
		{"round", int(s.Round)},
		{"pot", s.Pot},
		{"currentBet", s.CurrentBet},
		{"currentPlayerIndex", s.CurrentPlayerIndex},
		{"lastAggressor", s.LastAggressor},
		{"dealer", s.Dealer},
		{"smallBlind", s.SmallBlind},
		{"bigBlind", s.BigBlind},
		{"oddChips", int(s.OddChips)},
		{"initialTotal", s.InitialTotal},
		{"discarded", s.Discarded},
	}
	for _, f := range ints {
		if err := w.WriteString(f.key); err != nil {
			return err
		}
		if err := w.WriteInt(f.val); err != nil {
			return msgp.WrapError(err, f.key)
		}
	}

	if err := w.WriteString("handId"); err != nil {
		return err
	}
	if err := w.WriteString(s.HandID); err != nil {
		return msgp.WrapError(err, "handId")
	}
	if err := w.WriteString("roundStarted"); err != nil {
		return err
	}
	if err := w.WriteBool(s.RoundStarted); err != nil {
		return msgp.WrapError(err, "roundStarted")
	}

	if err := w.WriteString("players"); err != nil {
		return err
	}
	if err := encodePlayers(w, s.Players); err != nil {
		return msgp.WrapError(err, "players")
	}
	if err := w.WriteString("pots"); err != nil {
		return err
	}
	if err := encodePots(w, s.Pots); err != nil {
		return msgp.WrapError(err, "pots")
	}
	if err := w.WriteString("awarded"); err != nil {
		return err
	}
	if err := encodeBools(w, s.Awarded); err != nil {
		return msgp.WrapError(err, "awarded")
	}
	if err := w.WriteString("log"); err != nil {
		return err
	}
	if err := encodeLog(w, s.Log); err != nil {
		return msgp.WrapError(err, "log")
	}
	return nil
}

// DecodeMsg implements msgp.Decodable
func (z *wire) DecodeMsg(r *msgp.Reader) error {
	var s engine.Snapshot

	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for range n {
		key, err := r.ReadMapKeyPtr()
		if err != nil {
			return err
		}

		var v int
		switch string(key) {
		case "version":
			s.Version, err = r.ReadInt()
		case "handId":
			s.HandID, err = r.ReadString()
		case "handNumber":
			s.HandNumber, err = r.ReadInt()
		case "phase":
			v, err = r.ReadInt()
			s.Phase = engine.Phase(v)
		case "round":
			v, err = r.ReadInt()
			s.Round = engine.Round(v)
		case "pot":
			s.Pot, err = r.ReadInt()
		case "currentBet":
			s.CurrentBet, err = r.ReadInt()
		case "currentPlayerIndex":
			s.CurrentPlayerIndex, err = r.ReadInt()
		case "lastAggressor":
			s.LastAggressor, err = r.ReadInt()
		case "roundStarted":
			s.RoundStarted, err = r.ReadBool()
		case "dealer":
			s.Dealer, err = r.ReadInt()
		case "smallBlind":
			s.SmallBlind, err = r.ReadInt()
		case "bigBlind":
			s.BigBlind, err = r.ReadInt()
		case "oddChips":
			v, err = r.ReadInt()
			s.OddChips = showdown.OddChipPolicy(v)
		case "initialTotal":
			s.InitialTotal, err = r.ReadInt()
		case "discarded":
			s.Discarded, err = r.ReadInt()
		case "players":
			s.Players, err = decodePlayers(r)
		case "pots":
			s.Pots, err = decodePots(r)
		case "awarded":
			s.Awarded, err = decodeBools(r)
		case "log":
			s.Log, err = decodeLog(r)
		default:
			err = r.Skip()
		}
		if err != nil {
			return msgp.WrapError(err, string(key))
		}
	}

	z.Snapshot = s
	return nil
}

// stickyWriter and stickyReader stop at the first error so fixed-shape
// records can be written field by field
type stickyWriter struct {
	w   *msgp.Writer
	err error
}

func (s *stickyWriter) int(v int) {
	if s.err == nil {
		s.err = s.w.WriteInt(v)
	}
}

func (s *stickyWriter) bool(v bool) {
	if s.err == nil {
		s.err = s.w.WriteBool(v)
	}
}

func (s *stickyWriter) string(v string) {
	if s.err == nil {
		s.err = s.w.WriteString(v)
	}
}

type stickyReader struct {
	r   *msgp.Reader
	err error
}

func (s *stickyReader) int() (v int) {
	if s.err == nil {
		v, s.err = s.r.ReadInt()
	}
	return v
}

func (s *stickyReader) bool() (v bool) {
	if s.err == nil {
		v, s.err = s.r.ReadBool()
	}
	return v
}

func (s *stickyReader) string() (v string) {
	if s.err == nil {
		v, s.err = s.r.ReadString()
	}
	return v
}

const playerFields = 11

func encodePlayers(w *msgp.Writer, players []ledger.Player) error {
	if players == nil {
		return w.WriteNil()
	}
	if err := w.WriteArrayHeader(uint32(len(players))); err != nil {
		return err
	}
	for _, p := range players {
		if err := w.WriteArrayHeader(playerFields); err != nil {
			return err
		}
		sw := &stickyWriter{w: w}
		sw.int(p.ID)
		sw.string(p.Name)
		sw.int(p.Chips)
		sw.int(p.Bet)
		sw.int(p.TotalBet)
		sw.bool(p.Folded)
		sw.bool(p.AllIn)
		sw.bool(p.Acted)
		sw.bool(p.IsDealer)
		sw.bool(p.SittingOut)
		sw.int(int(p.Position))
		if sw.err != nil {
			return sw.err
		}
	}
	return nil
}

func decodePlayers(r *msgp.Reader) ([]ledger.Player, error) {
	if r.IsNil() {
		return nil, r.ReadNil()
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	players := make([]ledger.Player, n)
	for i := range players {
		fields, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if fields != playerFields {
			return nil, msgp.ArrayError{Wanted: playerFields, Got: fields}
		}

		sr := &stickyReader{r: r}
		players[i] = ledger.Player{
			ID:         sr.int(),
			Name:       sr.string(),
			Chips:      sr.int(),
			Bet:        sr.int(),
			TotalBet:   sr.int(),
			Folded:     sr.bool(),
			AllIn:      sr.bool(),
			Acted:      sr.bool(),
			IsDealer:   sr.bool(),
			SittingOut: sr.bool(),
			Position:   ledger.Position(sr.int()),
		}
		if sr.err != nil {
			return nil, msgp.WrapError(sr.err, i)
		}
	}
	return players, nil
}

func encodePots(w *msgp.Writer, pots []pot.Pot) error {
	if pots == nil {
		return w.WriteNil()
	}
	if err := w.WriteArrayHeader(uint32(len(pots))); err != nil {
		return err
	}
	for _, p := range pots {
		if err := w.WriteArrayHeader(3); err != nil {
			return err
		}
		if err := w.WriteInt(p.Amount); err != nil {
			return err
		}
		if err := encodeInts(w, p.Eligible); err != nil {
			return err
		}
		if err := encodeInts(w, p.Contenders); err != nil {
			return err
		}
	}
	return nil
}

func decodePots(r *msgp.Reader) ([]pot.Pot, error) {
	if r.IsNil() {
		return nil, r.ReadNil()
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	pots := make([]pot.Pot, n)
	for i := range pots {
		fields, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if fields != 3 {
			return nil, msgp.ArrayError{Wanted: 3, Got: fields}
		}
		if pots[i].Amount, err = r.ReadInt(); err != nil {
			return nil, msgp.WrapError(err, i)
		}
		if pots[i].Eligible, err = decodeInts(r); err != nil {
			return nil, msgp.WrapError(err, i)
		}
		if pots[i].Contenders, err = decodeInts(r); err != nil {
			return nil, msgp.WrapError(err, i)
		}
	}
	return pots, nil
}

func encodeLog(w *msgp.Writer, entries []engine.LogEntry) error {
	if entries == nil {
		return w.WriteNil()
	}
	if err := w.WriteArrayHeader(uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteArrayHeader(5); err != nil {
			return err
		}
		// Times travel as UTC nanoseconds
		if err := w.WriteInt64(e.At.UnixNano()); err != nil {
			return err
		}
		sw := &stickyWriter{w: w}
		sw.int(e.Hand)
		sw.int(int(e.Round))
		sw.int(e.Seat)
		sw.string(e.Message)
		if sw.err != nil {
			return sw.err
		}
	}
	return nil
}

func decodeLog(r *msgp.Reader) ([]engine.LogEntry, error) {
	if r.IsNil() {
		return nil, r.ReadNil()
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	entries := make([]engine.LogEntry, n)
	for i := range entries {
		fields, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if fields != 5 {
			return nil, msgp.ArrayError{Wanted: 5, Got: fields}
		}

		nanos, err := r.ReadInt64()
		if err != nil {
			return nil, msgp.WrapError(err, i)
		}
		sr := &stickyReader{r: r}
		entries[i] = engine.LogEntry{
			At:      time.Unix(0, nanos).UTC(),
			Hand:    sr.int(),
			Round:   engine.Round(sr.int()),
			Seat:    sr.int(),
			Message: sr.string(),
		}
		if sr.err != nil {
			return nil, msgp.WrapError(sr.err, i)
		}
	}
	return entries, nil
}

func encodeInts(w *msgp.Writer, values []int) error {
	if values == nil {
		return w.WriteNil()
	}
	if err := w.WriteArrayHeader(uint32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteInt(v); err != nil {
			return err
		}
	}
	return nil
}

func decodeInts(r *msgp.Reader) ([]int, error) {
	if r.IsNil() {
		return nil, r.ReadNil()
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	values := make([]int, n)
	for i := range values {
		if values[i], err = r.ReadInt(); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func encodeBools(w *msgp.Writer, values []bool) error {
	if values == nil {
		return w.WriteNil()
	}
	if err := w.WriteArrayHeader(uint32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteBool(v); err != nil {
			return err
		}
	}
	return nil
}

func decodeBools(r *msgp.Reader) ([]bool, error) {
	if r.IsNil() {
		return nil, r.ReadNil()
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	values := make([]bool, n)
	for i := range values {
		if values[i], err = r.ReadBool(); err != nil {
			return nil, err
		}
	}
	return values, nil
}

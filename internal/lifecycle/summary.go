package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
)

// Summarize renders the one-line human note for an envelope. The same text
// goes to the ops channel, the ledger notes column and the journal.
func Summarize(env EventEnvelope) string {
	name := env.Symbol
	if env.Direction != "" {
		name = fmt.Sprintf("%s (%s)", env.Symbol, env.Direction)
	}
	switch env.Type {
	case EvtEntryHit:
		var p EntryHitPayload
		if decodePayload(env.Data, &p) == nil {
			return fmt.Sprintf("%s crossed entry_%d (%s)", name, p.EntryLevel, trimFloat(p.EntryThreshold))
		}
	case EvtProfitHit:
		var p ProfitHitPayload
		if decodePayload(env.Data, &p) == nil {
			return fmt.Sprintf("Profit %d hit: %s at %s", p.ProfitLevel, name, trimFloat(p.ProfitThreshold))
		}
	case EvtStopOut:
		var p StopPayload
		if decodePayload(env.Data, &p) == nil {
			return fmt.Sprintf("Stop out: %s at %s", name, trimFloat(p.CurrentPrice))
		}
	case EvtStopWarning:
		var p StopPayload
		if decodePayload(env.Data, &p) == nil {
			return fmt.Sprintf("Stop warning: %s at %s", name, trimFloat(p.CurrentPrice))
		}
	case EvtJumpTarget:
		var p JumpPayload
		if decodePayload(env.Data, &p) == nil {
			levels := make([]string, 0, len(p.JumpedEntries))
			for _, e := range p.JumpedEntries {
				levels = append(levels, strconv.Itoa(e.EntryLevel))
			}
			return fmt.Sprintf("Jump: %s opened at %s, jumped entries: %s", name, trimFloat(p.OpenPrice), strings.Join(levels, ", "))
		}
	case EvtReset:
		var p ResetPayload
		if decodePayload(env.Data, &p) == nil {
			return fmt.Sprintf("Reset: %s - %s", name, p.Reason)
		}
	}
	return fmt.Sprintf("%s: %s", env.Type, name)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

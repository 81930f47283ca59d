package midi

import (
	"fmt"
	"io"
)

// Dump writes a one-line-per-event report of a decoded track.
func Dump(w io.Writer, events []TimedEvent) error {
	if _, err := fmt.Fprintf(w, "Time\t%18s  Channel  Param1  Param2\n", "Event"); err != nil {
		return err
	}
	for _, te := range events {
		if _, err := fmt.Fprintln(w, dumpLine(te)); err != nil {
			return err
		}
	}
	return nil
}

func dumpLine(te TimedEvent) string {
	ev := te.Event
	switch ev.Type() {
	case MetaEvent:
		if mpqn, ok := ev.MicrosecondsPerQuarterNote(); ok && mpqn > 0 {
			return fmt.Sprintf("%d\tSet Tempo (mpqn=%d bpm=%d)", te.Time, mpqn, 60000000/mpqn)
		}
		if text, ok := ev.MetaText(); ok {
			return fmt.Sprintf("%d\t%s: %s", te.Time, ev.MetaTypeName(), text)
		}
		return fmt.Sprintf("%d\t%s (%d bytes)", te.Time, ev.MetaTypeName(), len(ev.Data))
	case SysExEvent:
		return fmt.Sprintf("%d\tSysEx (%d bytes)", te.Time, ev.SysExLength())
	default:
		param2 := ""
		if v, ok := ev.Param2(); ok {
			param2 = fmt.Sprintf("%6d", v)
		}
		return fmt.Sprintf("%d\t%18s  %7d  %6d  %s", te.Time, ev.TypeName(), ev.Channel(), ev.Param1(), param2)
	}
}

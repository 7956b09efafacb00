package column

import (
	"math"
	"time"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/wire"
)

const daySeconds = 24 * 60 * 60

func serializeDate(w *wire.Writer, values []Value) error {
	buf := make([]byte, 2)
	for _, v := range values {
		days := uint16(v.TimeValue().Unix() / daySeconds)
		le.PutUint16(buf, days)
		w.Raw(buf)
	}

	return nil
}

func deserializeDate(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(2)
		if err != nil {
			return nil, err
		}

		days := le.Uint16(buf)
		out[i] = Time(time.Unix(int64(days)*daySeconds, 0).UTC())
	}

	return out, nil
}

func serializeDateTime(w *wire.Writer, values []Value) error {
	buf := make([]byte, 4)
	for _, v := range values {
		le.PutUint32(buf, uint32(v.TimeValue().Unix()))
		w.Raw(buf)
	}

	return nil
}

func deserializeDateTime(r *wire.Reader, t chtype.Type, n int) ([]Value, error) {
	loc := time.UTC
	if t.Timezone != "" {
		if l, err := time.LoadLocation(t.Timezone); err == nil {
			loc = l
		}
	}

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(4)
		if err != nil {
			return nil, err
		}

		secs := le.Uint32(buf)
		out[i] = Time(time.Unix(int64(secs), 0).In(loc))
	}

	return out, nil
}

func serializeDateTime64(w *wire.Writer, t chtype.Type, values []Value) error {
	scale := int64(math.Pow10(t.Precision))
	buf := make([]byte, 8)

	for _, v := range values {
		tv := v.TimeValue()
		ticks := tv.Unix()*scale + int64(tv.Nanosecond())*scale/int64(time.Second)
		le.PutUint64(buf, uint64(ticks))
		w.Raw(buf)
	}

	return nil
}

func deserializeDateTime64(r *wire.Reader, t chtype.Type, n int) ([]Value, error) {
	scale := int64(math.Pow10(t.Precision))
	loc := time.UTC
	if t.Timezone != "" {
		if l, err := time.LoadLocation(t.Timezone); err == nil {
			loc = l
		}
	}

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(8)
		if err != nil {
			return nil, err
		}

		ticks := int64(le.Uint64(buf))
		secs := ticks / scale
		frac := ticks % scale
		nanos := frac * int64(time.Second) / scale

		out[i] = Time(time.Unix(secs, nanos).In(loc))
	}

	return out, nil
}

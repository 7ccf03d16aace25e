package webhooklog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAddKeepsNewestFirstWithinCapacity(t *testing.T) {
	l := New(3, func() time.Time { return time.Unix(0, 0) })
	for i := 0; i < 5; i++ {
		l.Add("incoming", []byte(fmt.Sprintf(`{"n":%d}`, i)))
	}
	require.Equal(t, 3, l.Len())

	recent := l.Recent(2)
	require.Len(t, recent, 2)
	require.JSONEq(t, `{"n":4}`, string(recent[0].Data))
	require.JSONEq(t, `{"n":3}`, string(recent[1].Data))
	require.Equal(t, "incoming", recent[0].Type)

	require.Len(t, l.Recent(0), 3)
}

func TestAddQuotesInvalidJSON(t *testing.T) {
	l := New(0, nil)
	l.Add("outgoing", []byte("not json"))
	require.Equal(t, `"not json"`, string(l.Recent(1)[0].Data))
}

func TestReset(t *testing.T) {
	l := New(10, nil)
	l.Add("incoming", []byte(`{}`))
	l.Reset()
	require.Zero(t, l.Len())
	require.Empty(t, l.Recent(20))
}

package charstream

import (
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiblingCursors_Concurrent(t *testing.T) {
	const text = "status = 😱 and title ~ Δelta"
	src := FromString(text).Source()
	want := []rune(text)

	var wg conc.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Go(func() {
			cs := src.NewStream()
			for i := 0; i < 50; i++ {
				m := cs.Mark()
				for _, r := range want {
					got, err := cs.Consume()
					if !assert.NoError(t, err) || !assert.Equal(t, r, got) {
						return
					}
				}
				cs.Release(m)
			}
			assert.Equal(t, 0, cs.Index())
		})
	}
	wg.Wait()

	require.Equal(t, len(want), src.Size())
}

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGo(t *testing.T) {
	src := `package demo

// Store keeps items.
type Store struct{ items []int }

// Sum adds everything.
func (s *Store) Sum(mode int) int {
	total := 0
	for _, v := range s.items {
		if v < 0 {
			continue
		} else if v > 100 {
			total += 100
		} else {
			total += v
		}
	}
	switch mode {
	case 1, 2:
		total *= 2
	case 3:
		total *= 3
	default:
	}
	go func() {
		select {
		case <-done:
		default:
		}
	}()
	return total
}

func helper() {}

func Exported() {}
`
	f, err := ParseGo("store.go", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "go", f.Language)
	assert.Equal(t, 2, f.CommentLines)
	assert.Equal(t, []string{"Store.Sum", "helper", "Exported"}, unitNames(f))

	body := f.Units()[0].Children
	require.Equal(t, []Kind{KindLoop, KindSwitch, KindSwitch}, kinds(body))
	assert.Equal(t, []Kind{KindBranch, KindBranch}, kinds(body[0].Children), "else-if is a sibling")
	require.Len(t, body[1].Children, 3)
	assert.True(t, body[1].Children[2].Default)

	private := f.PrivateTopLevel()
	require.Len(t, private, 1)
	assert.Equal(t, "helper", private[0].Name)
}

func TestParseGo_ClosuresInHeaders(t *testing.T) {
	src := `package demo

func Run() error {
	if err := run(func() error {
		if ready {
			return nil
		}
		return nil
	}); err != nil {
		return err
	}
	for i := 0; check(func() bool {
		for range items {
		}
		return true
	}); i++ {
	}
	switch pick(func() int {
		if other {
			return 1
		}
		return 0
	}) {
	case 1:
	}
	return nil
}
`
	f, err := ParseGo("run.go", []byte(src))
	require.NoError(t, err)

	body := f.Units()[0].Children
	assert.Equal(t, []Kind{
		KindBranch, KindBranch, // closure in the if header, then the if
		KindLoop, KindLoop,     // closure in the for condition, then the for
		KindBranch, KindSwitch, // closure in the switch tag, then the switch
	}, kinds(body))
}

func TestParseGo_SyntaxError(t *testing.T) {
	_, err := ParseGo("bad.go", []byte("package demo\nfunc {"))
	assert.Error(t, err)
}

func TestParse_Dispatch(t *testing.T) {
	_, err := Parse("README.md", []byte("# hi"))
	assert.ErrorIs(t, err, ErrUnsupported)

	f, err := Parse("lib/main.dart", []byte("void main() {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "dart", f.Language)
}

func TestIsPrivateName(t *testing.T) {
	assert.True(t, IsPrivateName("dart", "_hidden"))
	assert.False(t, IsPrivateName("dart", "visible"))
	assert.True(t, IsPrivateName("go", "helper"))
	assert.False(t, IsPrivateName("go", "main"))
	assert.False(t, IsPrivateName("go", "Exported"))
	assert.False(t, IsPrivateName("rust", "x"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "branch", KindBranch.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

package hotredis

import (
	"context"
	_ "embed"
	"strings"

	"github.com/my4381918/hot-redis/utils"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
)

// The catalog source. Each procedure is introduced by a name token, a
// parenthesized parameter list, a body, and a closing "end". The parameter
// list is documentation; bodies read KEYS[1] and ARGV directly.
//
//go:embed atoms.lua
var atomsLua string

const (
	scriptListMultiply    = "list_multiply"
	scriptListInsert      = "list_insert"
	scriptListPop         = "list_pop"
	scriptListReverse     = "list_reverse"
	scriptSetInterUpdate  = "set_intersection_update"
	scriptSetDifferUpdate = "set_difference_update"
)

var ErrBadScriptSource = errors.New("hotredis: bad script source")

// ParseScripts splits a catalog source file into named procedure bodies.
// Blank lines and stray whitespace around a definition are tolerated.
func ParseScripts(src string) (map[string]string, error) {
	bodies := make(map[string]string)
	for _, chunk := range strings.Split(src, "function ") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		paren := strings.IndexByte(chunk, '(')
		nl := strings.IndexByte(chunk, '\n')
		if paren <= 0 || nl < 0 || paren > nl {
			return nil, errors.Wrapf(ErrBadScriptSource, "no signature in %.40q", chunk)
		}
		name := strings.TrimSpace(chunk[:paren])
		body := chunk[nl+1:]
		end := strings.LastIndex(body, "end")
		if end < 0 {
			return nil, errors.Wrapf(ErrBadScriptSource, "%s: no end marker", name)
		}
		bodies[name] = strings.TrimSpace(body[:end])
	}
	if len(bodies) == 0 {
		return nil, ErrBadScriptSource
	}
	return bodies, nil
}

// Catalog holds the compound procedures the native command set cannot run
// atomically, keyed by name. Entries are fixed after construction.
type Catalog struct {
	scripts *xsync.MapOf[string, *redis.Script]
}

func NewCatalog(src string) (*Catalog, error) {
	bodies, err := ParseScripts(src)
	if err != nil {
		return nil, err
	}
	c := &Catalog{scripts: xsync.NewMapOf[string, *redis.Script]()}
	for name, body := range bodies {
		c.scripts.Store(name, redis.NewScript(body))
	}
	return c, nil
}

func (c *Catalog) Get(name string) (*redis.Script, bool) {
	return c.scripts.Load(name)
}

func (c *Catalog) Names() (names []string) {
	c.scripts.Range(func(name string, _ *redis.Script) bool {
		names = append(names, name)
		return true
	})
	return
}

// Load registers every procedure on the server via SCRIPT LOAD. Lua syntax
// errors surface here, at startup, not on first use.
func (c *Catalog) Load(ctx context.Context, client redis.Scripter, log utils.Logger) (err error) {
	c.scripts.Range(func(name string, script *redis.Script) bool {
		sha, e := script.Load(ctx, client).Result()
		if e != nil {
			err = errors.Wrapf(e, "hotredis: load script %s", name)
			return false
		}
		if log != nil {
			log.DebugCtx(ctx, "script registered", "name", name, "sha", sha)
		}
		return true
	})
	return
}

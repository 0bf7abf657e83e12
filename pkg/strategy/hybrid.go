package strategy

import "github.com/cloudera-labs/hms-mirror/pkg/mirror"

// hybrid chooses between EXPORT_IMPORT and SQL per table.
type hybrid struct{}

func (hybrid) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return delegate(ctx, tm, hybridChoice).BuildOutDefinition(ctx, tm)
}

func (hybrid) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return delegate(ctx, tm, hybridChoice).BuildOutSQL(ctx, tm)
}

func (hybrid) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return delegate(ctx, tm, hybridChoice).Execute(ctx, tm)
}

// hybridInPlace chooses how an ACID table is downgraded on the LEFT cluster.
type hybridInPlace struct{}

func (hybridInPlace) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return delegate(ctx, tm, inPlaceChoice).BuildOutDefinition(ctx, tm)
}

func (hybridInPlace) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return delegate(ctx, tm, inPlaceChoice).BuildOutSQL(ctx, tm)
}

func (hybridInPlace) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return delegate(ctx, tm, inPlaceChoice).Execute(ctx, tm)
}

func hybridChoice(ctx *Context, tm *mirror.TableMirror) (mirror.DataStrategy, string) {
	return selectHybrid(ctx.Config, tm.Env(mirror.LEFT))
}

func inPlaceChoice(ctx *Context, tm *mirror.TableMirror) (mirror.DataStrategy, string) {
	return selectInPlace(ctx.Config, tm.Env(mirror.LEFT))
}

// delegate records the variant picked by choose on tm and returns it. The
// choice is stable, so the phases of a delegating variant may call it
// repeatedly.
func delegate(
	ctx *Context,
	tm *mirror.TableMirror,
	choose func(*Context, *mirror.TableMirror) (mirror.DataStrategy, string),
) Strategy {
	ds, reason := choose(ctx, tm)
	if tm.Strategy != ds {
		tm.Strategy = ds
		tm.AddStep("strategy", ds)
		if reason != "" {
			tm.AddIssue(mirror.LEFT, reason)
		}
	}

	return For(ds)
}

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verso/internal/event"
	"github.com/roach88/verso/internal/ir"
	"github.com/roach88/verso/internal/testutil"
)

func TestDetectConflictsConcurrentUpdate(t *testing.T) {
	ours := []event.Event{testutil.Update("posts:p1", 1000,
		ir.Object{"title": ir.String("Original")},
		ir.Object{"title": ir.String("Our Title")},
	)}
	theirs := []event.Event{testutil.Update("posts:p1", 1100,
		ir.Object{"title": ir.String("Original")},
		ir.Object{"title": ir.String("Their Title")},
	)}

	conflicts := DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, ConcurrentUpdate, c.Type)
	assert.Equal(t, "posts:p1", c.Target)
	assert.Equal(t, "title", c.Field)
	assert.True(t, ir.Equal(ir.String("Our Title"), c.OurValue))
	assert.True(t, ir.Equal(ir.String("Their Title"), c.TheirValue))
	assert.True(t, ir.Equal(ir.String("Original"), c.BaseValue))
	require.NotNil(t, c.OurEvent)
	require.NotNil(t, c.TheirEvent)
	assert.Equal(t, int64(1000), c.OurEvent.TS)
	assert.Equal(t, int64(1100), c.TheirEvent.TS)
}

func TestDetectConflictsMultipleFields(t *testing.T) {
	ours := []event.Event{testutil.Update("posts:p1", 1000,
		ir.Object{"title": ir.String("O"), "body": ir.String("O")},
		ir.Object{"title": ir.String("A"), "body": ir.String("B"), "shared": ir.Int(1)},
	)}
	theirs := []event.Event{testutil.Update("posts:p1", 1001,
		ir.Object{"title": ir.String("O"), "body": ir.String("O")},
		ir.Object{"title": ir.String("X"), "body": ir.String("Y"), "shared": ir.Int(1)},
	)}

	conflicts := DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 2)
	// Sorted field order.
	assert.Equal(t, "body", conflicts[0].Field)
	assert.Equal(t, "title", conflicts[1].Field)
}

func TestDetectConflictsDisjointTargets(t *testing.T) {
	ours := []event.Event{testutil.Update("posts:p1", 1, nil, ir.Object{"a": ir.Int(1)})}
	theirs := []event.Event{testutil.Update("posts:p2", 1, nil, ir.Object{"a": ir.Int(2)})}
	assert.Empty(t, DetectConflicts(ours, theirs))
}

func TestDetectConflictsDeleteUpdate(t *testing.T) {
	base := ir.Object{"title": ir.String("Original")}
	tests := []struct {
		name               string
		deleteTS, updateTS int64
		theirsDelete       bool
	}{
		{"our_delete_earlier", 1000, 2000, false},
		{"our_delete_later", 2000, 1000, false},
		{"their_delete_earlier", 1000, 2000, true},
		{"their_delete_later", 2000, 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := testutil.Update("posts:p1", tt.updateTS, base, ir.Object{"title": ir.String("Changed")})
			del := testutil.Delete("posts:p1", tt.deleteTS, base)

			ours, theirs := []event.Event{del}, []event.Event{update}
			if tt.theirsDelete {
				ours, theirs = theirs, ours
			}

			conflicts := DetectConflicts(ours, theirs)
			require.Len(t, conflicts, 1, "delete vs update always conflicts, regardless of timestamps")
			c := conflicts[0]
			assert.Equal(t, DeleteUpdate, c.Type)
			assert.Empty(t, c.Field)
			assert.True(t, ir.Equal(base, c.BaseValue))
		})
	}
}

func TestDetectConflictsDeleteDeleteIdempotent(t *testing.T) {
	base := ir.Object{"title": ir.String("Original")}
	ours := []event.Event{testutil.Delete("posts:p1", 1000, base)}
	theirs := []event.Event{testutil.Delete("posts:p1", 2000, base)}
	assert.Empty(t, DetectConflicts(ours, theirs))
}

func TestDetectConflictsCreateCreate(t *testing.T) {
	sameState := ir.Object{"title": ir.String("Post")}
	t.Run("identical_states_no_conflict", func(t *testing.T) {
		ours := []event.Event{testutil.Create("posts:p1", 1000, sameState)}
		theirs := []event.Event{testutil.Create("posts:p1", 1001, sameState)}
		assert.Empty(t, DetectConflicts(ours, theirs))
	})

	t.Run("divergent_states_whole_entity_conflict", func(t *testing.T) {
		ours := []event.Event{testutil.Create("posts:p1", 1000, ir.Object{"title": ir.String("A")})}
		theirs := []event.Event{testutil.Create("posts:p1", 1001, ir.Object{"title": ir.String("B")})}

		conflicts := DetectConflicts(ours, theirs)
		require.Len(t, conflicts, 1)
		c := conflicts[0]
		assert.Equal(t, CreateCreate, c.Type)
		assert.Empty(t, c.Field, "create/create compares whole entity states")
		assert.Nil(t, c.BaseValue)
	})
}

func TestDetectConflictsCommutativeSuppression(t *testing.T) {
	ourAfter := testutil.WithOps(
		ir.Object{"views": ir.Int(11)},
		event.UpdateOps{event.OpInc: {"views": ir.Int(1)}},
	)
	theirAfter := testutil.WithOps(
		ir.Object{"views": ir.Int(13)},
		event.UpdateOps{event.OpInc: {"views": ir.Int(3)}},
	)
	base := ir.Object{"views": ir.Int(10)}

	ours := []event.Event{testutil.Update("posts:p1", 1000, base, ourAfter)}
	theirs := []event.Event{testutil.Update("posts:p1", 1001, base, theirAfter)}

	assert.Empty(t, DetectConflicts(ours, theirs),
		"concurrent $inc on the same field is combinable, not a conflict")
}

func TestDetectConflictsNonCommutativeOpsStillConflict(t *testing.T) {
	ourAfter := testutil.WithOps(
		ir.Object{"views": ir.Int(11)},
		event.UpdateOps{event.OpInc: {"views": ir.Int(1)}},
	)
	theirAfter := testutil.WithOps(
		ir.Object{"views": ir.Int(100)},
		event.UpdateOps{event.OpSet: {"views": ir.Int(100)}},
	)
	base := ir.Object{"views": ir.Int(10)}

	ours := []event.Event{testutil.Update("posts:p1", 1000, base, ourAfter)}
	theirs := []event.Event{testutil.Update("posts:p1", 1001, base, theirAfter)}

	conflicts := DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "views", conflicts[0].Field)
}

func TestDetectConflictsOpsSidechannelNotDiffed(t *testing.T) {
	// Both sides agree on entity fields; only provenance differs.
	ourAfter := testutil.WithOps(
		ir.Object{"title": ir.String("Same")},
		event.UpdateOps{event.OpSet: {"title": ir.String("Same")}},
	)
	theirAfter := ir.Object{"title": ir.String("Same")}

	ours := []event.Event{testutil.Update("posts:p1", 1000, nil, ourAfter)}
	theirs := []event.Event{testutil.Update("posts:p1", 1001, nil, theirAfter)}
	assert.Empty(t, DetectConflicts(ours, theirs))
}

func TestDetectConflictsUsesLatestPerTarget(t *testing.T) {
	// Our older write diverges, but our newest event matches theirs.
	ours := []event.Event{
		testutil.Update("posts:p1", 1000, nil, ir.Object{"title": ir.String("Stale")}),
		testutil.Update("posts:p1", 2000, nil, ir.Object{"title": ir.String("Final")}),
	}
	theirs := []event.Event{
		testutil.Update("posts:p1", 1500, nil, ir.Object{"title": ir.String("Final")}),
	}
	assert.Empty(t, DetectConflicts(ours, theirs))
}

func TestDetectConflictsCreateUpdatePair(t *testing.T) {
	ours := []event.Event{testutil.Create("posts:p1", 1000, ir.Object{"title": ir.String("A")})}
	theirs := []event.Event{testutil.Update("posts:p1", 1001, nil, ir.Object{"title": ir.String("B")})}

	conflicts := DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConcurrentUpdate, conflicts[0].Type, "create/update pairs diff per field")
	assert.Equal(t, "title", conflicts[0].Field)
}

package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ls-leads/internal/entity"
)

var (
	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(2 * time.Hour)
	t2 = t0.Add(48 * time.Hour)
)

func reasonPtr(r entity.CloseReason) *entity.CloseReason { return &r }

var edges = map[entity.LeadStatus][]entity.LeadStatus{
	entity.StatusPendente:    {entity.StatusAtribuida, entity.StatusEncerrada, entity.StatusInativo},
	entity.StatusAtribuida:   {entity.StatusEmContato, entity.StatusEncerrada, entity.StatusInativo},
	entity.StatusEmContato:   {entity.StatusQualificada, entity.StatusEncerrada, entity.StatusInativo},
	entity.StatusQualificada: {entity.StatusEncerrada, entity.StatusInativo},
	entity.StatusEncerrada:   {},
	entity.StatusInativo:     {entity.StatusPendente},
}

func TestApplyEveryPair(t *testing.T) {
	for _, from := range entity.AllStatuses {
		for _, to := range entity.AllStatuses {
			allowed := from == to
			for _, s := range edges[from] {
				if s == to {
					allowed = true
				}
			}

			l := &entity.Lead{Status: from}
			change, err := Apply(l, Request{Target: to}, t0)
			if allowed {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, Change{From: from, To: to}, change)
				assert.Equal(t, to, l.Status)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
				var te *TransitionError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, from, te.From)
				assert.Equal(t, from, l.Status, "lead must stay untouched")
			}
		}
	}
}

func TestMilestonesAreSetOnce(t *testing.T) {
	l := &entity.Lead{Status: entity.StatusPendente}

	_, err := Apply(l, Request{Target: entity.StatusAtribuida}, t0)
	require.NoError(t, err)
	_, err = Apply(l, Request{Target: entity.StatusEmContato}, t1)
	require.NoError(t, err)
	_, err = Apply(l, Request{Target: entity.StatusQualificada}, t1)
	require.NoError(t, err)

	require.NotNil(t, l.AssignedAt)
	require.NotNil(t, l.FirstContactAt)
	require.NotNil(t, l.QualifiedAt)
	assert.Equal(t, t0, *l.AssignedAt)
	assert.Equal(t, t1, *l.QualifiedAt)

	_, err = Apply(l, Request{Target: entity.StatusQualificada}, t2)
	require.NoError(t, err)
	assert.Equal(t, t1, *l.QualifiedAt)
}

func TestReactivationClearsOnlyClosedAt(t *testing.T) {
	l := &entity.Lead{Status: entity.StatusEmContato}
	contact := t0
	assigned := t0.Add(-time.Hour)
	l.FirstContactAt = &contact
	l.AssignedAt = &assigned

	change, err := Apply(l, Request{CloseReason: reasonPtr(entity.CloseTimingInadequado)}, t1)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInativo, change.To)
	require.NotNil(t, l.ClosedAt)
	assert.Equal(t, t1, *l.ClosedAt)

	_, err = Apply(l, Request{Target: entity.StatusPendente}, t2)
	require.NoError(t, err)
	assert.Nil(t, l.ClosedAt)
	assert.Nil(t, l.CloseReason)
	assert.Equal(t, contact, *l.FirstContactAt)
	assert.Equal(t, assigned, *l.AssignedAt)
}

func TestCloseReasonDerivesTarget(t *testing.T) {
	for _, reason := range CloseReasons() {
		class, ok := Classify(reason)
		require.True(t, ok)

		l := &entity.Lead{Status: entity.StatusEmContato}
		change, err := Apply(l, Request{CloseReason: reasonPtr(reason)}, t0)
		require.NoError(t, err, reason)

		switch class {
		case ClassWin, ClassLoss:
			assert.Equal(t, entity.StatusEncerrada, change.To, reason)
		case ClassRecyclable:
			assert.Equal(t, entity.StatusInativo, change.To, reason)
		}
		assert.Equal(t, reason, *l.CloseReason)
	}
}

func TestCloseReasonRejections(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		l := &entity.Lead{Status: entity.StatusEmContato}
		_, err := Apply(l, Request{CloseReason: reasonPtr("SUMIU")}, t0)
		assert.ErrorIs(t, err, ErrInvalidCloseReason)
	})

	t.Run("non closing target", func(t *testing.T) {
		l := &entity.Lead{Status: entity.StatusEmContato}
		_, err := Apply(l, Request{Target: entity.StatusQualificada, CloseReason: reasonPtr(entity.CloseVendaRealizada)}, t0)
		assert.ErrorIs(t, err, ErrInvalidCloseReason)
	})

	t.Run("win reason as inactive", func(t *testing.T) {
		l := &entity.Lead{Status: entity.StatusEmContato}
		_, err := Apply(l, Request{Target: entity.StatusInativo, CloseReason: reasonPtr(entity.CloseVendaRealizada)}, t0)
		assert.ErrorIs(t, err, ErrInvalidCloseReason)
		assert.Equal(t, entity.StatusEmContato, l.Status)
	})

	t.Run("recyclable reason as closed", func(t *testing.T) {
		l := &entity.Lead{Status: entity.StatusEmContato}
		_, err := Apply(l, Request{Target: entity.StatusEncerrada, CloseReason: reasonPtr(entity.CloseTimingInadequado)}, t0)
		assert.ErrorIs(t, err, ErrInvalidCloseReason)
	})
}

func TestSaleClosesAsEncerrada(t *testing.T) {
	l := &entity.Lead{Status: entity.StatusEmContato}

	change, err := Apply(l, Request{Target: entity.StatusEncerrada, CloseReason: reasonPtr(entity.CloseVendaRealizada)}, t0)
	require.NoError(t, err)
	assert.Equal(t, Change{From: entity.StatusEmContato, To: entity.StatusEncerrada}, change)
	require.NotNil(t, l.ClosedAt)
	assert.Empty(t, AvailableTransitions(l.Status))
}

func TestSameStatusPatchesDetail(t *testing.T) {
	closed := t0
	l := &entity.Lead{Status: entity.StatusEncerrada, ClosedAt: &closed}
	detail := "cliente fechou com outro banco"

	change, err := Apply(l, Request{Target: entity.StatusEncerrada, CloseReasonDetail: &detail}, t1)
	require.NoError(t, err)
	assert.False(t, change.Moved())
	assert.Equal(t, detail, *l.CloseReasonDetail)
	assert.Equal(t, t0, *l.ClosedAt)
}

func TestUnknownTarget(t *testing.T) {
	l := &entity.Lead{Status: entity.StatusPendente}
	_, err := Apply(l, Request{Target: "PERDIDA"}, t0)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

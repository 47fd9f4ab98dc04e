package view

import (
	"testing"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_Cycle(t *testing.T) {
	var c Coordinator
	assert.Equal(t, ViewExpenses, c.Active())

	assert.Equal(t, ViewSummary, c.Next())
	assert.Equal(t, ViewAnalysis, c.Next())
	assert.Equal(t, ViewChat, c.Next())
	assert.Equal(t, ViewExpenses, c.Next())

	assert.Equal(t, ViewChat, c.Prev())
	assert.Equal(t, ViewAnalysis, c.Prev())

	c.Select(View(42))
	assert.Equal(t, ViewAnalysis, c.Active())
	c.Select(ViewSummary)
	assert.Equal(t, ViewSummary, c.Active())
}

func TestParseView(t *testing.T) {
	tests := []struct {
		input   string
		want    View
		wantErr bool
	}{
		{input: "expenses", want: ViewExpenses},
		{input: " Summary ", want: ViewSummary},
		{input: "CHAT", want: ViewChat},
		{input: "settings", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseView(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordinator_Form(t *testing.T) {
	var c Coordinator
	assert.False(t, c.FormOpen())

	c.OpenCreate()
	mode, id := c.Form()
	assert.Equal(t, FormCreate, mode)
	assert.Zero(t, id)

	c.OpenEdit(model.ExpenseID(7))
	mode, id = c.Form()
	assert.Equal(t, FormEdit, mode)
	assert.Equal(t, model.ExpenseID(7), id)

	c.CloseForm()
	mode, id = c.Form()
	assert.Equal(t, FormClosed, mode)
	assert.Zero(t, id)
}

func TestCoordinator_Delete(t *testing.T) {
	var c Coordinator

	require.True(t, c.AskDelete(3))
	id, pending := c.PendingDelete()
	assert.True(t, pending)
	assert.Equal(t, model.ExpenseID(3), id)

	id, ok := c.ResolveDelete(false)
	assert.False(t, ok)
	assert.Zero(t, id)
	_, pending = c.PendingDelete()
	assert.False(t, pending)

	c.AskDelete(4)
	id, ok = c.ResolveDelete(true)
	assert.True(t, ok)
	assert.Equal(t, model.ExpenseID(4), id)

	_, ok = c.ResolveDelete(true)
	assert.False(t, ok, "nothing pending")

	c.OpenCreate()
	assert.False(t, c.AskDelete(5), "form open")

	c.CloseForm()
	c.AskDelete(6)
	c.OpenEdit(6)
	_, pending = c.PendingDelete()
	assert.False(t, pending, "opening a form cancels confirmation")

	c.Next()
	c.Reset()
	assert.Equal(t, ViewExpenses, c.Active())
	assert.False(t, c.FormOpen())
}

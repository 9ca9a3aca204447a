package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"title":  "Groceries",
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before.UTC()) && !evt.Timestamp.After(after.UTC()))
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": float64(42),
	}

	evt := NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "transaction.updated", decoded["type"])
	assert.Equal(t, "transaction", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_JSON_RoundTrip(t *testing.T) {
	fixedTime := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":     float64(1),
		"amount": "250.00",
	}

	evt := Event{
		Type:      "budget.updated",
		Entity:    EntityTypeBudget,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decodedPayload["id"])
	assert.Equal(t, "250.00", decodedPayload["amount"])
}

func TestTransactionEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":     float64(1),
		"amount": "50.00",
	}

	t.Run("TransactionCreated", func(t *testing.T) {
		evt := TransactionCreated(payload)
		assert.Equal(t, "transaction.created", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("TransactionUpdated", func(t *testing.T) {
		evt := TransactionUpdated(payload)
		assert.Equal(t, "transaction.updated", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
	})

	t.Run("TransactionDeleted", func(t *testing.T) {
		evt := TransactionDeleted(payload)
		assert.Equal(t, "transaction.deleted", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
	})
}

func TestBudgetEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(9)}

	assert.Equal(t, "budget.created", BudgetCreated(payload).Type)
	assert.Equal(t, "budget.updated", BudgetUpdated(payload).Type)
	assert.Equal(t, "budget.deleted", BudgetDeleted(payload).Type)
	assert.Equal(t, EntityTypeBudget, BudgetCreated(payload).Entity)
}

func TestEntityEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(2)}

	assert.Equal(t, "account.created", AccountCreated(payload).Type)
	assert.Equal(t, "account.updated", AccountUpdated(payload).Type)
	assert.Equal(t, "account.deleted", AccountDeleted(payload).Type)
	assert.Equal(t, EntityTypeAccount, AccountUpdated(payload).Entity)
	assert.Equal(t, "contact.created", ContactCreated(payload).Type)
	assert.Equal(t, "contact.updated", ContactUpdated(payload).Type)
	assert.Equal(t, "contact.deleted", ContactDeleted(payload).Type)
	assert.Equal(t, EntityTypeContact, ContactUpdated(payload).Entity)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/ident"
	"github.com/suparena/schemastore/security"
)

func TestDateTimeCodec(t *testing.T) {
	c := NewDateTimeCodec()
	local := time.Date(2025, 3, 1, 10, 30, 0, 0, time.FixedZone("EST", -5*3600))

	encoded, err := c.Encode(strfmt.DateTime(local))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, encoded.(time.Time).Location())
	assert.True(t, local.Equal(encoded.(time.Time)))

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, local.Equal(time.Time(decoded.(strfmt.DateTime))))

	decoded, err = c.Decode("2025-03-01T15:30:00.000Z")
	require.NoError(t, err)
	assert.True(t, local.Equal(time.Time(decoded.(strfmt.DateTime))))

	_, err = c.Encode("yesterday")
	assert.Error(t, err)
}

func TestEntityUUIDCodec(t *testing.T) {
	id := ident.NewEntityUUID()

	strict := NewEntityUUIDCodec(false)
	encoded, err := strict.Encode(id)
	require.NoError(t, err)
	assert.Equal(t, id.UUID, encoded)

	decoded, err := strict.Decode([16]byte(id.UUID))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = strict.Decode(id.Value())
	assert.True(t, serrors.IsValidationError(err))

	lenient := NewEntityUUIDCodec(true)
	encoded, err = lenient.Encode(id)
	require.NoError(t, err)
	assert.Equal(t, id.Value(), encoded)

	decoded, err = lenient.Decode(id.Value())
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = lenient.Encode(42)
	assert.Error(t, err)
}

func TestLenientUUIDCodec(t *testing.T) {
	c := NewLenientUUIDCodec()
	raw := uuid.New()

	encoded, err := c.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, raw.String(), encoded)

	encoded, err = c.Encode(strfmt.UUID("A987FBC9-4BED-3078-CF07-9141BA07C9F3"))
	require.NoError(t, err)
	assert.Equal(t, "a987fbc9-4bed-3078-cf07-9141ba07c9f3", encoded)

	_, err = c.Encode(strfmt.UUID("nope"))
	assert.True(t, serrors.IsValidationError(err))

	decoded, err := c.Decode([]byte(raw.String()))
	require.NoError(t, err)
	assert.Equal(t, strfmt.UUID(raw.String()), decoded)
}

func TestPasswordCodec(t *testing.T) {
	cipher, err := security.NewAESCipher(bytes.Repeat([]byte{5}, 16))
	require.NoError(t, err)
	c := NewPasswordCodec(security.NewPasswordHelperWithCost(cipher, bcrypt.MinCost))

	encoded, err := c.Encode(security.NewPassword("hunter2"))
	require.NoError(t, err)
	assert.True(t, security.IsEncrypted(encoded.(string)))

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decoded.(security.Password).Reveal())

	_, err = NewPasswordCodec(nil).Encode(security.NewPassword("x"))
	assert.ErrorIs(t, err, errNoCipher)
}

func TestPrincipalCollectionCodec(t *testing.T) {
	c := NewPrincipalCollectionCodec()
	pc := security.PrincipalCollection{}.Add("NexusAuthorizingRealm", "admin")

	encoded, err := c.Encode(pc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"realm":"NexusAuthorizingRealm","name":"admin"}]`, encoded.(string))

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, pc, decoded)
}

func TestCollectionCodecs(t *testing.T) {
	list, err := NewListCodec().Encode([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, `["b","a"]`, list)

	set, err := NewSetCodec().Encode(NewSet("b", "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, set)

	decoded, err := NewSetCodec().Decode(set)
	require.NoError(t, err)
	assert.True(t, decoded.(Set).Has("a"))
	assert.Len(t, decoded.(Set), 2)

	m, err := NewMapCodec().Decode(`{"k":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": float64(1)}, m)

	_, err = NewMapCodec().Decode("{broken")
	assert.Error(t, err)
}

func TestNestedAttributesMap(t *testing.T) {
	m := NewNestedAttributesMap("attributes", nil)
	m.Child("maven2").Set("groupId", "org.example")

	encoded, err := NewNestedAttributesMapCodec().Encode(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"maven2":{"groupId":"org.example"}}`, encoded.(string))

	decoded, err := NewNestedAttributesMapCodec().Decode(encoded)
	require.NoError(t, err)
	nested := decoded.(NestedAttributesMap)
	assert.Equal(t, "org.example", nested.Child("maven2").Get("groupId"))
	assert.Equal(t, "attributes.maven2", nested.Child("maven2").Key)
}

func TestNestedAttributesMapDecodesUnderRootKey(t *testing.T) {
	m := NewNestedAttributesMap("content", map[string]any{"size": "12"})

	encoded, err := NewNestedAttributesMapCodec().Encode(m)
	require.NoError(t, err)
	assert.NotContains(t, encoded.(string), "content")

	decoded, err := NewNestedAttributesMapCodec().Decode(encoded)
	require.NoError(t, err)
	nested := decoded.(NestedAttributesMap)
	assert.Equal(t, "attributes", nested.Key)
	assert.Equal(t, "12", nested.Get("size"))
}

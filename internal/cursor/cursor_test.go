// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cursor_test

import (
	"testing"

	"github.com/cloudfuse/clusternode/internal/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	c := cursor.New([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, 5, c.Remaining())

	p, ok := c.Fetch(2)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, p)
	assert.Equal(t, 3, c.Remaining())

	p, ok = c.Fetch(3)
	require.True(t, ok)
	assert.Equal(t, []byte{3, 4, 5}, p)
	assert.Equal(t, 0, c.Remaining())
}

func TestFetchShort(t *testing.T) {
	c := cursor.New([]byte{1, 2, 3})

	_, ok := c.Fetch(4)
	assert.False(t, ok)
	assert.Equal(t, 3, c.Remaining(), "a failed Fetch must not advance the cursor")

	p, ok := c.Fetch(3)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, p)
}

func TestFetchAliasesBackingArray(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	c := cursor.New(b)

	p, ok := c.Fetch(4)
	require.True(t, ok)

	b[0] = 0xff
	assert.EqualValues(t, 0xff, p[0], "Fetch must return a view over the original buffer, not a copy")
}

func TestFetchCString(t *testing.T) {
	c := cursor.New([]byte("foo.txt\x00tail"))

	s, ok := c.FetchCString()
	require.True(t, ok)
	assert.Equal(t, "foo.txt", string(s))
	assert.Equal(t, 4, c.Remaining())

	rest, ok := c.Fetch(4)
	require.True(t, ok)
	assert.Equal(t, "tail", string(rest))
}

func TestFetchCStringNoTerminator(t *testing.T) {
	c := cursor.New([]byte("no-nul-here"))

	_, ok := c.FetchCString()
	assert.False(t, ok)
	assert.Equal(t, 11, c.Remaining())
}

func TestFetchRest(t *testing.T) {
	c := cursor.New([]byte{1, 2, 3})
	_, _ = c.Fetch(1)

	rest := c.FetchRest()
	assert.Equal(t, []byte{2, 3}, rest)
	assert.Equal(t, 0, c.Remaining())
}

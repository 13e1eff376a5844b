package rendervariations

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldPaths(t *testing.T) {
	got, err := ParseFieldPaths([]string{"works.Artwork.image", "users.User.avatar"})
	require.NoError(t, err)

	want := []FieldPath{
		{App: "works", Model: "Artwork", Field: "image"},
		{App: "users", Model: "User", Field: "avatar"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFieldPaths() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "works.Artwork.image", got[0].String())
}

func TestParseFieldPathRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"MyStorageModel.image",
		"image",
		"",
		"a.b.c.d",
		"works..image",
		".Artwork.image",
		"works.Artwork.",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseFieldPath(in)
			require.Error(t, err)
			assert.True(t, IsCommandError(err))
			assert.Equal(t,
				"Error parsing field_path '"+in+"'. Use format <app.model.field app.model.field>.",
				err.Error())
		})
	}
}

func TestParseFieldPathsAllOrNothing(t *testing.T) {
	got, err := ParseFieldPaths([]string{"works.Artwork.image", "bad"})
	assert.Nil(t, got)
	assert.EqualError(t, err, "Error parsing field_path 'bad'. Use format <app.model.field app.model.field>.")

	_, err = ParseFieldPaths(nil)
	assert.ErrorIs(t, err, ErrNoFieldPaths)
}

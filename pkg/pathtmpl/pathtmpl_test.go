package pathtmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
)

func TestRender(t *testing.T) {
	subs := map[string]string{
		"name":     "Sonic The Hedgehog",
		"filename": "sonic.bin",
		"system":   "Megadrive",
		"emulator": "genesis-plus-gx",
		"media":    "screenshot",
	}

	tests := []struct {
		name    string
		tmpl    string
		want    string
		wantErr bool
	}{
		{
			name: "default layout",
			tmpl: "media/{media}/{name}",
			want: "media/screenshot/Sonic The Hedgehog",
		},
		{
			name: "all placeholders",
			tmpl: "{system}/{emulator}/{media}/{filename}",
			want: "Megadrive/genesis-plus-gx/screenshot/sonic.bin",
		},
		{
			name: "no placeholders",
			tmpl: "media/flat",
			want: "media/flat",
		},
		{
			name: "repeated placeholder",
			tmpl: "{media}/{media}",
			want: "screenshot/screenshot",
		},
		{
			name:    "unknown placeholder",
			tmpl:    "media/{categoria}/{name}",
			wantErr: true,
		},
		{
			name: "unterminated brace passes through",
			tmpl: "media/{name",
			want: "media/{name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, subs)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.ErrUnknownPlaceholder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

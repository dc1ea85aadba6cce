package contest

import "testing"

func TestStripColumn(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		column string
		want   string
	}{
		{
			name:   "strips the answer column",
			in:     "id,value,output\n1,a,X\n2,b,Y\n",
			column: "output",
			want:   "id,value\n1,a\n2,b\n",
		},
		{
			name:   "column match is case insensitive",
			in:     "id,Output\n1,X\n",
			column: "output",
			want:   "id\n1\n",
		},
		{
			name:   "missing column leaves content unchanged",
			in:     "id,value\n1,a\n",
			column: "output",
			want:   "id,value\n1,a\n",
		},
		{
			name:   "short rows survive",
			in:     "id,value,output\n1\n2,b,Y\n",
			column: "output",
			want:   "id,value\n1\n2,b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripColumn([]byte(tt.in), tt.column)
			if err != nil {
				t.Fatalf("StripColumn() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("StripColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripColumnMalformed(t *testing.T) {
	_, err := StripColumn([]byte("a,\"b\n1,2\n"), "output")
	if err == nil {
		t.Fatal("StripColumn() error = nil, want parse error")
	}
}

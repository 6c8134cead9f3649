package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	n, err := Parse(`=PIVOT("1","expected_revenue","stage_id",2)*-A1+10%`)
	require.NoError(t, err)

	assert.Equal(t, &Binary{
		Op: "+",
		Left: &Binary{
			Op: "*",
			Left: &Call{Name: "PIVOT", Args: []Node{
				&Literal{Kind: Text, Value: "1"},
				&Literal{Kind: Text, Value: "expected_revenue"},
				&Literal{Kind: Text, Value: "stage_id"},
				&Literal{Kind: Number, Value: "2"},
			}},
			Right: &Unary{Op: "-", Operand: &Reference{Ref: "A1"}},
		},
		Right: &Unary{Op: "%", Operand: &Literal{Kind: Number, Value: "10"}, Postfix: true},
	}, n)
}

func TestParse_Precedence(t *testing.T) {
	n, err := Parse(`1+2*3^2`)
	require.NoError(t, err)

	assert.Equal(t, &Binary{
		Op:   "+",
		Left: &Literal{Kind: Number, Value: "1"},
		Right: &Binary{
			Op:    "*",
			Left:  &Literal{Kind: Number, Value: "2"},
			Right: &Binary{Op: "^", Left: &Literal{Kind: Number, Value: "3"}, Right: &Literal{Kind: Number, Value: "2"}},
		},
	}, n)
}

func TestParse_Errors(t *testing.T) {
	for name, formula := range map[string]string{
		"empty":          "=",
		"unclosed call":  `=PIVOT("1"`,
		"unclosed paren": `=(1+2`,
		"stray paren":    `=1+2)`,
		"dangling op":    `=1+`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(formula)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestFunctions(t *testing.T) {
	tests := map[string]struct {
		formula string
		want    []string
	}{
		"single pivot":        {formula: `=PIVOT("1","expected_revenue")`, want: []string{Pivot}},
		"lower case":          {formula: `=pivot.header("1")`, want: []string{PivotHeader}},
		"inside other call":   {formula: `=SUM(PIVOT("1","m"),LIST("2","1","name"))`, want: []string{Pivot, List}},
		"inside operators":    {formula: `=-PIVOT("1","m")+LIST.HEADER("1","name")`, want: []string{Pivot, ListHeader}},
		"position not walked": {formula: `=PIVOT("1","m","stage_id",PIVOT.POSITION("1","stage_id",1))`, want: []string{Pivot}},
		"no odoo function":    {formula: `=SUM(A1:A3)`},
		"unparsable":          {formula: `=PIVOT("1"`},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var got []string
			for _, f := range Functions(test.formula) {
				got = append(got, f.Name)
			}
			assert.Equal(t, test.want, got)
		})
	}
}

func TestSingle(t *testing.T) {
	f, ok := Single(`=PIVOT.HEADER("1","stage_id","2")`)
	require.True(t, ok)
	assert.Equal(t, PivotHeader, f.Name)
	assert.Equal(t, PivotKind, f.Kind)

	f, ok = Single(`=PIVOT("1","m")*2`)
	require.True(t, ok)
	assert.Equal(t, Pivot, f.Name)
	f, ok = Single(`=SUM(PIVOT("1","m"), 3)`)
	require.True(t, ok)
	args, ok := f.StringArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"1", "m"}, args)
	_, ok = Single(`=LIST("1",1,"name")`)
	assert.True(t, ok)

	_, ok = Single(`=PIVOT("1","m")+LIST("1",1,"name")`)
	assert.False(t, ok)
	_, ok = Single(`=SUM(A1:A3)`)
	assert.False(t, ok)
}

func TestExact(t *testing.T) {
	f, ok := Exact(`=LIST.HEADER("1","name")`)
	require.True(t, ok)
	assert.Equal(t, ListHeader, f.Name)
	assert.Equal(t, ListKind, f.Kind)

	_, ok = Exact(`=PIVOT("1","m")*2`)
	assert.False(t, ok)
	_, ok = Exact(`=SUM(PIVOT("1","m"))`)
	assert.False(t, ok)
	_, ok = Exact(`=PIVOT("1"`)
	assert.False(t, ok)
}

func TestFunction_StringArgs(t *testing.T) {
	tests := map[string]struct {
		formula string
		want    []string
		ok      bool
	}{
		"literals":      {formula: `=PIVOT("1","expected_revenue","stage_id",2)`, want: []string{"1", "expected_revenue", "stage_id", "2"}, ok: true},
		"escaped quote": {formula: `=PIVOT.HEADER("1","name","say ""hi""")`, want: []string{"1", "name", `say "hi"`}, ok: true},
		"position": {
			formula: `=PIVOT("1","m","stage_id",PIVOT.POSITION("1","stage_id",3))`,
			want:    []string{"1", "m", "#stage_id", "3"},
			ok:      true,
		},
		"reference": {formula: `=PIVOT("1","m","stage_id",A1)`},
		"expression": {formula: `=LIST("1",1+1,"name")`},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f, found := Single(test.formula)
			require.True(t, found)
			got, ok := f.StringArgs()
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestMake(t *testing.T) {
	assert.Equal(t, `=PIVOT("1","expected_revenue","stage_id","2")`, MakePivot("1", "expected_revenue", "stage_id", "2"))
	assert.Equal(t, `=PIVOT.HEADER("1")`, MakePivotHeader("1"))
	assert.Equal(t, `=LIST("3","12","partner_id")`, MakeList("3", 12, "partner_id"))
	assert.Equal(t, `=LIST.HEADER("3","name")`, MakeListHeader("3", "name"))
	assert.Equal(t, `=PIVOT.HEADER("1","name","say ""hi""")`, MakePivotHeader("1", "name", `say "hi"`))

	f, ok := Single(MakePivotHeader("1", "name", `say "hi"`))
	require.True(t, ok)
	args, ok := f.StringArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"1", "name", `say "hi"`}, args)
}

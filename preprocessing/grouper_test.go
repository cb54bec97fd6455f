package preprocessing

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/YuminosukeSato/tabprep/core/frame"
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// repeat は値と件数のペアからセル値のスライスを組み立てるテストヘルパー
func repeat(pairs ...interface{}) []string {
	var out []string
	for i := 0; i < len(pairs)-1; i += 2 {
		v := pairs[i].(string)
		n := pairs[i+1].(int)
		for j := 0; j < n; j++ {
			out = append(out, v)
		}
	}
	return out
}

func mustFrame(t *testing.T, cols ...*frame.Column) *frame.Frame {
	t.Helper()
	f, err := frame.New(cols...)
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	return f
}

// colorColumn は仕様化されたエンドツーエンドの分布を持つ列を作る:
// 100行中 red 70, blue 20, green 5, yellow 3, purple 2
func colorColumn(t *testing.T, withDomain bool) *frame.Column {
	t.Helper()
	col := frame.NewColumn("color", frame.Categorical,
		repeat("red", 70, "blue", 20, "green", 5, "yellow", 3, "purple", 2))
	if withDomain {
		if err := col.SetDomain([]string{"red", "blue", "green", "yellow", "purple"}); err != nil {
			t.Fatalf("SetDomain() error = %v", err)
		}
	}
	return col
}

func TestNewCategoricalGrouperValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []GrouperOption
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			opts:    nil,
			wantErr: false,
		},
		{
			name:    "freq method accepted",
			opts:    []GrouperOption{WithMethod(MethodFreq)},
			wantErr: false,
		},
		{
			name:    "unknown method rejected",
			opts:    []GrouperOption{WithMethod("quantile")},
			wantErr: true,
		},
		{
			name:    "threshold of zero accepted",
			opts:    []GrouperOption{WithPercentileThresh(0)},
			wantErr: false,
		},
		{
			name:    "threshold of one rejected",
			opts:    []GrouperOption{WithPercentileThresh(1)},
			wantErr: true,
		},
		{
			name:    "negative threshold rejected",
			opts:    []GrouperOption{WithPercentileThresh(-0.1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCategoricalGrouper(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCategoricalGrouper() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var verr *errors.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error should be castable to *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestCategoricalGrouperFitErrors(t *testing.T) {
	g, err := NewCategoricalGrouper()
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Fit(nil); err == nil {
		t.Error("Fit(nil) should return an error")
	}

	empty := mustFrame(t, frame.NewColumn("color", frame.Categorical, nil))
	if err := g.Fit(empty); err == nil {
		t.Error("Fit() on an empty frame should return an error")
	} else if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Fit() on empty frame should wrap ErrEmptyData, got %v", err)
	}
}

// 未学習のインスタンスに対するTransformはNotFittedErrorになる
func TestCategoricalGrouperTransformNotFitted(t *testing.T) {
	g, err := NewCategoricalGrouper()
	if err != nil {
		t.Fatal(err)
	}

	X := mustFrame(t, colorColumn(t, false))
	_, err = g.Transform(X)
	if err == nil {
		t.Fatal("Transform() before Fit() should return an error")
	}
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("error should be castable to *NotFittedError, got %T: %v", err, err)
	}
	if nfe.TransformerName != "CategoricalGrouper" {
		t.Errorf("NotFittedError.TransformerName = %q, want %q", nfe.TransformerName, "CategoricalGrouper")
	}
}

// 仕様化されたエンドツーエンドの例:
// percentile_thresh=0.05 のとき累積シェアは red(0.70) → blue(0.90) → green(0.95) で
// 0.95に達し、kept = {red, blue, green}, sparse = {yellow, purple} となる
func TestCategoricalGrouperEndToEnd(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
	if err != nil {
		t.Fatal(err)
	}

	X := mustFrame(t, colorColumn(t, false))
	if err := g.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if !reflect.DeepEqual(g.CatColumns, []string{"color"}) {
		t.Errorf("CatColumns = %v, want [color]", g.CatColumns)
	}
	if !reflect.DeepEqual(g.SparseCategories["color"], []string{"yellow", "purple"}) {
		t.Errorf("SparseCategories[color] = %v, want [yellow purple]", g.SparseCategories["color"])
	}

	out, err := g.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	col, err := out.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		counts[col.Value(i)]++
	}
	want := map[string]int{"red": 70, "blue": 20, "green": 5, "Other": 5}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("value counts after transform = %v, want %v", counts, want)
	}
}

// 閉じたドメインを持つ列では、スパースカテゴリがドメインから取り除かれ、
// センチネル値がドメインに追加される
func TestCategoricalGrouperDomainShrink(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
	if err != nil {
		t.Fatal(err)
	}

	X := mustFrame(t, colorColumn(t, true))
	out, err := g.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	col, err := out.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	if !col.HasDomain() {
		t.Fatal("transformed column should keep its closed domain")
	}
	for _, removed := range []string{"yellow", "purple"} {
		if col.InDomain(removed) {
			t.Errorf("domain should no longer contain %q", removed)
		}
	}
	if !col.InDomain("Other") {
		t.Error("domain should contain the sentinel category")
	}

	// 入力側のドメインは変更されない
	orig, err := X.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	if orig.InDomain("Other") || !orig.InDomain("yellow") {
		t.Error("input frame domain must not be mutated")
	}
}

// スパース候補が0個または1個の列は一切変更されない
func TestCategoricalGrouperNoGroupingForFewCandidates(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		thresh float64
	}{
		{
			name:   "no candidates",
			values: repeat("a", 5, "b", 5),
			thresh: 0.05,
		},
		{
			name: "single candidate",
			// a=0.6, b=0.3 で累積0.9 >= 0.9(=1-0.1) に到達、候補は c のみ
			values: repeat("a", 6, "b", 3, "c", 1),
			thresh: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewCategoricalGrouper(WithPercentileThresh(tt.thresh))
			if err != nil {
				t.Fatal(err)
			}
			X := mustFrame(t, frame.NewColumn("c1", frame.Categorical, tt.values))
			out, err := g.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			if got := g.SparseCategories["c1"]; len(got) != 0 {
				t.Errorf("SparseCategories[c1] = %v, want empty", got)
			}
			col, err := out.Column("c1")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(col.Values(), tt.values) {
				t.Errorf("column values changed: got %v, want %v", col.Values(), tt.values)
			}
		})
	}
}

// 閾値を上げてもスパース集合のサイズは減らない
func TestCategoricalGrouperThresholdMonotonicity(t *testing.T) {
	values := repeat("a", 50, "b", 20, "c", 12, "d", 8, "e", 5, "f", 3, "g", 2)
	prev := -1
	for _, thresh := range []float64{0, 0.05, 0.1, 0.2, 0.4, 0.6, 0.9} {
		g, err := NewCategoricalGrouper(WithPercentileThresh(thresh))
		if err != nil {
			t.Fatal(err)
		}
		X := mustFrame(t, frame.NewColumn("c1", frame.Categorical, values))
		if err := g.Fit(X); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		size := len(g.SparseCategories["c1"])
		if size < prev {
			t.Errorf("sparse set size decreased from %d to %d at thresh=%g", prev, size, thresh)
		}
		prev = size
	}
}

// 閾値が0のときは全カテゴリが保持される
func TestCategoricalGrouperZeroThresholdKeepsEverything(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0))
	if err != nil {
		t.Fatal(err)
	}
	X := mustFrame(t, colorColumn(t, false))
	if err := g.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := g.SparseCategories["color"]; len(got) != 0 {
		t.Errorf("SparseCategories[color] = %v, want empty at thresh=0", got)
	}
}

// 同一フィット結果でのTransformの再適用は冪等である
func TestCategoricalGrouperIdempotence(t *testing.T) {
	for _, withDomain := range []bool{false, true} {
		name := "open domain"
		if withDomain {
			name = "closed domain"
		}
		t.Run(name, func(t *testing.T) {
			g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
			if err != nil {
				t.Fatal(err)
			}
			X := mustFrame(t, colorColumn(t, withDomain))
			once, err := g.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			twice, err := g.Transform(once)
			if err != nil {
				t.Fatalf("second Transform() error = %v", err)
			}

			c1, err := once.Column("color")
			if err != nil {
				t.Fatal(err)
			}
			c2, err := twice.Column("color")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c1.Values(), c2.Values()) {
				t.Error("applying Transform twice changed cell values")
			}
			if !reflect.DeepEqual(c1.Domain(), c2.Domain()) {
				t.Errorf("applying Transform twice changed the domain: %v vs %v", c1.Domain(), c2.Domain())
			}
		})
	}
}

// include_colsは宣言型に関わらず列を対象に加え、exclude_colsは対象から外す
func TestCategoricalGrouperColumnSelection(t *testing.T) {
	x := frame.NewColumn("x", frame.Numeric, repeat("1", 50, "2", 30, "3", 10, "4", 6, "5", 4))
	y := frame.NewColumn("y", frame.Categorical, repeat("p", 60, "q", 40))
	z := frame.NewColumn("z", frame.Categorical, repeat("u", 70, "v", 30))

	tests := []struct {
		name string
		opts []GrouperOption
		want []string
	}{
		{
			name: "categorical columns by default",
			opts: nil,
			want: []string{"y", "z"},
		},
		{
			name: "include adds a numeric column in frame order",
			opts: []GrouperOption{WithIncludeColumns([]string{"x"})},
			want: []string{"x", "y", "z"},
		},
		{
			name: "exclude removes a categorical column",
			opts: []GrouperOption{WithExcludeColumns([]string{"y"})},
			want: []string{"z"},
		},
		{
			name: "include and exclude combined",
			opts: []GrouperOption{WithIncludeColumns([]string{"x"}), WithExcludeColumns([]string{"z"})},
			want: []string{"x", "y"},
		},
		{
			name: "unknown names are ignored",
			opts: []GrouperOption{WithIncludeColumns([]string{"nope"}), WithExcludeColumns([]string{"missing"})},
			want: []string{"y", "z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewCategoricalGrouper(tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			X := mustFrame(t, x, y, z)
			if err := g.Fit(X); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			if !reflect.DeepEqual(g.CatColumns, tt.want) {
				t.Errorf("CatColumns = %v, want %v", g.CatColumns, tt.want)
			}
		})
	}
}

// 頻度が同じカテゴリは辞書順の昇順で並び、kept/sparseの境界が再現可能になる
func TestCategoricalGrouperTieBreak(t *testing.T) {
	// a=0.4, c=0.2, z=0.2, d=0.1, e=0.1。cとzは頻度が同じなので
	// 辞書順でcが先: 累積 a(0.4) → c(0.6) で 0.55 に到達し、
	// 同頻度でもzはスパース側に落ちる。
	values := repeat("a", 4, "z", 2, "c", 2, "d", 1, "e", 1)
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.45))
	if err != nil {
		t.Fatal(err)
	}
	X := mustFrame(t, frame.NewColumn("c1", frame.Categorical, values))
	if err := g.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	want := []string{"z", "d", "e"}
	if !reflect.DeepEqual(g.SparseCategories["c1"], want) {
		t.Errorf("SparseCategories[c1] = %v, want %v", g.SparseCategories["c1"], want)
	}
}

// センチネル値が既存のドメインカテゴリと衝突する場合はCategoryConflictError
func TestCategoricalGrouperSentinelConflict(t *testing.T) {
	col := frame.NewColumn("color", frame.Categorical,
		repeat("red", 70, "blue", 20, "green", 5, "yellow", 3, "purple", 2))
	if err := col.SetDomain([]string{"red", "blue", "green", "yellow", "purple", "Other"}); err != nil {
		t.Fatal(err)
	}

	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
	if err != nil {
		t.Fatal(err)
	}
	X := mustFrame(t, col)
	_, err = g.FitTransform(X)
	if err == nil {
		t.Fatal("FitTransform() should fail when the sentinel collides with a domain member")
	}
	var cce *errors.CategoryConflictError
	if !errors.As(err, &cce) {
		t.Fatalf("error should be castable to *CategoryConflictError, got %T: %v", err, err)
	}
	if cce.Column != "color" || cce.Category != "Other" {
		t.Errorf("CategoryConflictError = %+v, want column=color category=Other", cce)
	}
}

// Fitで選択された列がTransform時のフレームに存在しない場合はColumnNotFoundError
func TestCategoricalGrouperMissingColumnAtTransform(t *testing.T) {
	g, err := NewCategoricalGrouper()
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Fit(mustFrame(t, colorColumn(t, false))); err != nil {
		t.Fatal(err)
	}

	other := mustFrame(t, frame.NewColumn("size", frame.Categorical, repeat("s", 5, "m", 5)))
	_, err = g.Transform(other)
	if err == nil {
		t.Fatal("Transform() on a frame without the fitted column should fail")
	}
	var cnf *errors.ColumnNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("error should be castable to *ColumnNotFoundError, got %T: %v", err, err)
	}
	if !reflect.DeepEqual(cnf.Columns, []string{"color"}) {
		t.Errorf("ColumnNotFoundError.Columns = %v, want [color]", cnf.Columns)
	}
}

// Transformは入力フレームを変更しない
func TestCategoricalGrouperInputNotMutated(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
	if err != nil {
		t.Fatal(err)
	}
	X := mustFrame(t, colorColumn(t, false))
	before, err := X.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	snapshot := before.Values()

	if _, err := g.FitTransform(X); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	after, err := X.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(after.Values(), snapshot) {
		t.Error("input frame was mutated by Transform")
	}
}

// 連続したFitは学習済み属性を全体的に置き換える
func TestCategoricalGrouperRefitReplacesState(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Fit(mustFrame(t, colorColumn(t, false))); err != nil {
		t.Fatal(err)
	}

	second := mustFrame(t, frame.NewColumn("animal", frame.Categorical, repeat("cat", 9, "dog", 1)))
	if err := g.Fit(second); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g.CatColumns, []string{"animal"}) {
		t.Errorf("CatColumns after refit = %v, want [animal]", g.CatColumns)
	}
	if _, ok := g.SparseCategories["color"]; ok {
		t.Error("SparseCategories should not retain columns from the previous fit")
	}
}

// 学習済みグルーパーはgobでラウンドトリップできる
func TestCategoricalGrouperPersistence(t *testing.T) {
	g, err := NewCategoricalGrouper(WithPercentileThresh(0.05), WithNewCategory("misc"))
	if err != nil {
		t.Fatal(err)
	}
	X := mustFrame(t, colorColumn(t, false))
	if err := g.Fit(X); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := model.SaveTransformerToWriter(g, &buf); err != nil {
		t.Fatalf("SaveTransformerToWriter() error = %v", err)
	}

	restored := &CategoricalGrouper{}
	if err := model.LoadTransformerFromReader(restored, &buf); err != nil {
		t.Fatalf("LoadTransformerFromReader() error = %v", err)
	}
	if !restored.IsFitted() {
		t.Fatal("restored grouper should be fitted")
	}
	if !reflect.DeepEqual(restored.SparseCategories, g.SparseCategories) {
		t.Errorf("restored SparseCategories = %v, want %v", restored.SparseCategories, g.SparseCategories)
	}

	out, err := restored.Transform(X)
	if err != nil {
		t.Fatalf("Transform() with restored grouper error = %v", err)
	}
	col, err := out.Column("color")
	if err != nil {
		t.Fatal(err)
	}
	miscCount := 0
	for i := 0; i < col.Len(); i++ {
		if col.Value(i) == "misc" {
			miscCount++
		}
	}
	if miscCount != 5 {
		t.Errorf("restored grouper rewrote %d rows, want 5", miscCount)
	}
}

func TestCategoricalGrouperString(t *testing.T) {
	g, err := NewCategoricalGrouper()
	if err != nil {
		t.Fatal(err)
	}
	want := "CategoricalGrouper(method=freq, percentile_thresh=0.05, new_cat=Other)"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "numbers").
		From("expert_predictions").
		Where(Eq("user_id", int64(7)), Eq("issue_name", "2025001")).
		OrderBy("playtype_id").
		Limit(1).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	want := "SELECT id, numbers FROM expert_predictions WHERE user_id = $1 AND issue_name = $2 ORDER BY playtype_id LIMIT 1 FOR UPDATE"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "2025001" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InAndEmptyIn(t *testing.T) {
	query, args, err := Select("*").
		From("expert_predictions").
		Where(In("playtype_id", []any{1001, 1002}), In("user_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	want := "SELECT * FROM expert_predictions WHERE playtype_id IN ($1, $2) AND 1=0"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		Name    string `db:"name"`
		Version int64  `db:"version"`
		ignored string
		Skip    string `db:"-"`
	}

	query, args, err := InsertModel("cache_versions", row{Name: "lotto", Version: 1}, "ON CONFLICT (name) DO UPDATE SET version = cache_versions.version + 1 RETURNING version")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO cache_versions (name, version) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET version = cache_versions.version + 1 RETURNING version"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != "lotto" || args[1] != int64(1) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("lottery_results").
		Set("open_code", "1,2,3").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(9))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	want := "UPDATE lottery_results SET open_code = $1, updated_at = NOW() WHERE id = $2"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != "1,2,3" || args[1] != int64(9) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := Update("t").Set("a", 1).ToSQL(); err == nil {
		t.Fatalf("expected error for unbounded update")
	}
}

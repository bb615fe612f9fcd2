package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/movierec/internal/model"
)

// writeCatalogFixture 写一个带脏表头的目录文件
func writeCatalogFixture(t *testing.T, path string) {
	t.Helper()
	header := []string{" Title ", "GENRE", "Rating", " Director", "poster_url"}
	rows := [][]string{
		{"올드보이", "Action", "8.4", "박찬욱", "http://posters.example.com/oldboy.jpg"},
		{"괴물", "Action", "8.0", "봉준호", ""},
		{"기생충", "Drama", "8.9", "봉준호", ""},
	}
	if err := writeTable(path, header, rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie_data.csv")
	writeCatalogFixture(t, path)
	c := NewCatalog(path)
	if err := c.Load(); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestCatalog_LoadNormalizesColumns(t *testing.T) {
	c := newCatalog(t)

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	m, ok := c.FindByTitle("올드보이")
	if !ok {
		t.Fatalf("title lookup failed after header normalization")
	}
	if m.Genre != "Action" || m.Rating != 8.4 || m.Director != "박찬욱" {
		t.Fatalf("fields wrong: %+v", m)
	}
	if m.PosterURL == "" {
		t.Fatalf("poster_url not loaded")
	}
}

func TestCatalog_LoadFailureDegradesToEmpty(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "missing.csv"))

	err := c.Load()
	if !errors.Is(err, model.ErrDataLoad) {
		t.Fatalf("err = %v, want ErrDataLoad", err)
	}
	// 加载失败降级为空目录，诊断信息可查，绝不中断进程
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
	if c.LoadError() == nil {
		t.Fatalf("LoadError should carry the diagnostic")
	}

	if got := c.Search("아무거나", ""); len(got) != 0 {
		t.Fatalf("search on empty catalog returned %d items", len(got))
	}
}

func TestCatalog_Search(t *testing.T) {
	c := newCatalog(t)

	cases := []struct {
		name    string
		keyword string
		genre   string
		want    []string
	}{
		{"全部", "", "", []string{"올드보이", "괴물", "기생충"}},
		{"子串", "보이", "", []string{"올드보이"}},
		{"类型过滤", "", "Action", []string{"올드보이", "괴물"}},
		{"类型区分大小写", "", "action", nil},
		{"组合过滤", "괴", "Action", []string{"괴물"}},
		{"无结果", "없는영화", "", nil},
	}
	for _, tc := range cases {
		got := c.Search(tc.keyword, tc.genre)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d items, want %d", tc.name, len(got), len(tc.want))
		}
		for i := range tc.want {
			if got[i].Title != tc.want[i] {
				t.Fatalf("%s: item %d = %s, want %s", tc.name, i, got[i].Title, tc.want[i])
			}
		}
	}
}

func TestCatalog_Genres(t *testing.T) {
	c := newCatalog(t)

	got := c.Genres()
	want := []string{"Action", "Drama"}
	if len(got) != len(want) {
		t.Fatalf("genres = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("genres = %v, want %v", got, want)
		}
	}
}

func TestCatalog_UpdateGenrePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie_data.csv")
	writeCatalogFixture(t, path)
	c := NewCatalog(path)
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := c.UpdateGenre("기생충", "Thriller"); err != nil {
		t.Fatalf("update genre: %v", err)
	}
	if err := c.UpdateGenre("없는영화", "X"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update missing title: %v, want ErrNotFound", err)
	}

	// 改动要落盘，重新加载后仍然可见
	reloaded := NewCatalog(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	m, ok := reloaded.FindByTitle("기생충")
	if !ok || m.Genre != "Thriller" {
		t.Fatalf("genre edit did not persist: %+v", m)
	}
	// 其他字段不动
	if m.Rating != 8.9 || m.Director != "봉준호" {
		t.Fatalf("genre edit touched other fields: %+v", m)
	}
}

func TestCatalog_ListByGenre(t *testing.T) {
	c := newCatalog(t)

	action := c.ListByGenre("Action")
	if len(action) != 2 || action[0].Title != "올드보이" || action[1].Title != "괴물" {
		t.Fatalf("ListByGenre order broken: %+v", action)
	}
	if got := c.ListByGenre("Comedy"); len(got) != 0 {
		t.Fatalf("unknown genre returned %d items", len(got))
	}
}

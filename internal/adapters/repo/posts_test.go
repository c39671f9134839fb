package repo

import (
	"strings"
	"testing"

	"creatora-api/internal/domain"
)

func TestGeneratedPostsQueryWhitelistsOrder(t *testing.T) {
	list, count, args := generatedPostsQuery(domain.GeneratedPostQuery{
		UserID: "u1", Page: 3, Limit: 10, Search: "coffee", Sort: domain.SortAsc, OrderBy: "platform",
	})
	if !strings.Contains(list, "ORDER BY platform ASC") {
		t.Fatalf("ожидали сортировку по platform ASC: %s", list)
	}
	if !strings.HasPrefix(count, "SELECT count(*)") {
		t.Fatalf("неверный запрос подсчёта: %s", count)
	}
	if args[0] != "u1" || args[1] != "coffee" || args[2] != 10 || args[3] != 20 {
		t.Fatalf("неверные аргументы: %v", args)
	}
}

func TestGeneratedPostsQueryRejectsUnknownColumn(t *testing.T) {
	list, _, _ := generatedPostsQuery(domain.GeneratedPostQuery{
		UserID: "u1", Page: 1, Limit: 10, OrderBy: "id; DROP TABLE users", Sort: "sideways",
	})
	if !strings.Contains(list, "ORDER BY created_at DESC") || strings.Contains(list, "DROP") {
		t.Fatalf("неизвестная колонка должна заменяться на created_at: %s", list)
	}
}

func TestGeneratedPostsQueryEscapesSearchPattern(t *testing.T) {
	list, count, args := generatedPostsQuery(domain.GeneratedPostQuery{
		UserID: "u1", Page: 1, Limit: 10, Search: `50%_off\now`,
	})
	if args[1] != `50\%\_off\\now` {
		t.Fatalf("спецсимволы ILIKE должны экранироваться: %q", args[1])
	}
	for _, q := range []string{list, count} {
		if strings.Count(q, `ESCAPE '\'`) != 2 {
			t.Fatalf("ожидали ESCAPE у обоих ILIKE: %s", q)
		}
	}
	_, _, args = generatedPostsQuery(domain.GeneratedPostQuery{UserID: "u1", Page: 1, Limit: 10})
	if args[1] != "" {
		t.Fatalf("пустой поиск должен остаться пустым: %q", args[1])
	}
}

package models

import "testing"

func TestSearchResponse_Page(t *testing.T) {
	resp := &SearchResponse{
		Results: []SearchResult{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
		Total:   4,
	}
	tests := []struct {
		name          string
		offset, limit int
		want          []string
	}{
		{"all", 0, 0, []string{"1", "2", "3", "4"}},
		{"first two", 0, 2, []string{"1", "2"}},
		{"middle", 1, 2, []string{"2", "3"}},
		{"limit past end", 3, 10, []string{"4"}},
		{"offset past end", 10, 2, nil},
		{"negative offset", -3, 1, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := resp.Page(tt.offset, tt.limit)
			if len(page.Results) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(page.Results), len(tt.want))
			}
			for i, id := range tt.want {
				if page.Results[i].ID != id {
					t.Errorf("result %d = %s, want %s", i, page.Results[i].ID, id)
				}
			}
			if page.Total != 4 {
				t.Errorf("Total should be unchanged by paging, got %d", page.Total)
			}
		})
	}
	if len(resp.Results) != 4 {
		t.Error("Page must not modify the receiver")
	}
}

func TestWord_Result(t *testing.T) {
	w := &Word{ID: "7", Type: "substantiv", Swedish: "hund", Arabic: "كلب", Forms: "hunden,hundar", Gender: "en", Definition: "ett djur"}
	r := w.Result()
	if r.ID != "7" || r.Swedish != "hund" || r.Arabic != "كلب" || r.Forms != "hunden,hundar" || r.Gender != "en" || r.Type != "substantiv" {
		t.Errorf("unexpected projection: %+v", r)
	}
}

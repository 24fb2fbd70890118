package catalog

import (
	"testing"
	"time"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

func codePtr(code string) *string { return &code }

func TestRelevanceScore(t *testing.T) {
	cases := []struct {
		name    string
		product models.Product
		term    string
		want    int
	}{
		{
			name:    "no match",
			product: models.Product{Name: "Servo", Description: "A small motor"},
			term:    "camera",
			want:    0,
		},
		{
			name:    "code substring",
			product: models.Product{ProductCode: codePtr("CAM-200"), Name: "Mount"},
			term:    "cam",
			want:    3,
		},
		{
			name:    "code exact gets the bonus",
			product: models.Product{ProductCode: codePtr("CAM-200"), Name: "Mount"},
			term:    "cam-200",
			want:    5,
		},
		{
			name:    "name substring",
			product: models.Product{Name: "Camera Mount"},
			term:    "camera",
			want:    2,
		},
		{
			name:    "name exact gets the bonus",
			product: models.Product{Name: "Camera"},
			term:    "camera",
			want:    3,
		},
		{
			name:    "description only",
			product: models.Product{Name: "Mount", Description: "Holds any camera"},
			term:    "camera",
			want:    1,
		},
		{
			name: "fields accumulate",
			product: models.Product{
				ProductCode: codePtr("CAM-1"),
				Name:        "Camera Arm",
				Description: "Camera arm with clamp",
			},
			term: "cam",
			want: 6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := relevanceScore(tc.product, tc.term); got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRankBySearchAvailabilityBreaksScoreTies(t *testing.T) {
	t2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	t3 := t2.Add(24 * time.Hour)

	products := []models.Product{
		{ID: 2, ProductCode: codePtr("RX9"), Name: "Robot Arm Two", IsAvailable: false, CreatedAt: t3},
		{ID: 1, ProductCode: codePtr("RX1"), Name: "Robot Arm", IsAvailable: true, CreatedAt: t2},
	}

	rankBySearch(products, "robot")

	// both score 2 on the name match; availability wins over the newer
	// creation time
	if products[0].ID != 1 || products[1].ID != 2 {
		t.Fatalf("unexpected order: %d, %d", products[0].ID, products[1].ID)
	}
}

func TestRankBySearchRecencyBreaksAvailabilityTies(t *testing.T) {
	t1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	products := []models.Product{
		{ID: 1, Name: "Robot Base", IsAvailable: true, CreatedAt: t1},
		{ID: 2, Name: "Robot Base Pro", IsAvailable: true, CreatedAt: t2},
	}

	rankBySearch(products, "robot")

	if products[0].ID != 2 {
		t.Fatalf("expected newer product first, got %d", products[0].ID)
	}
}

func TestRankBySearchScoreBeatsAvailability(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Spare Wheel", Description: "robot accessory", IsAvailable: true},
		{ID: 2, ProductCode: codePtr("ROBOT"), Name: "Chassis", IsAvailable: false},
	}

	rankBySearch(products, "robot")

	// score 5 (code exact) outranks score 1 even though the loser is
	// available
	if products[0].ID != 2 {
		t.Fatalf("expected higher score first, got %d", products[0].ID)
	}
}

func TestRankByProductCodeExactFirst(t *testing.T) {
	products := []models.Product{
		{ID: 1, ProductCode: codePtr("RX10"), IsAvailable: true},
		{ID: 2, ProductCode: codePtr("RX1"), IsAvailable: true},
	}

	rankByProductCode(products, "RX1")

	if products[0].ID != 2 {
		t.Fatalf("exact code match should rank first, got product %d", products[0].ID)
	}
}

func TestRankByProductCodeTieBreaks(t *testing.T) {
	t1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	products := []models.Product{
		{ID: 1, ProductCode: codePtr("RX100"), IsAvailable: false, CreatedAt: t1.Add(time.Hour)},
		{ID: 2, ProductCode: codePtr("RX101"), IsAvailable: true, CreatedAt: t1},
		{ID: 3, ProductCode: codePtr("RX102"), IsAvailable: true, CreatedAt: t1.Add(2 * time.Hour)},
	}

	rankByProductCode(products, "RX1")

	// no exact matches: available first, newest first within the group
	want := []int64{3, 2, 1}
	for i, id := range want {
		if products[i].ID != id {
			t.Fatalf("position %d: got product %d, want %d", i, products[i].ID, id)
		}
	}
}

func TestRankersIgnoreBlankTerms(t *testing.T) {
	products := []models.Product{{ID: 1}, {ID: 2}}
	rankBySearch(products, "  ")
	rankByProductCode(products, "")
	if products[0].ID != 1 || products[1].ID != 2 {
		t.Fatal("blank terms must leave the order untouched")
	}
}

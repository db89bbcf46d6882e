package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

func mustClinic(t *testing.T, db *gorm.DB, name, state, lga string) *domain.ClinicLocation {
	t.Helper()
	c := &domain.ClinicLocation{Name: name, State: state, LGA: lga, Address: "1 Test Road"}
	if err := CreateClinic(context.Background(), db, c); err != nil {
		t.Fatalf("create clinic %s: %v", name, err)
	}
	return c
}

func TestClinic_CRUDAndFilter(t *testing.T) {
	db := newTestDB(t, "repo-clinic")
	ctx := context.Background()

	ikeja := mustClinic(t, db, "Marie Stopes Ikeja", "Lagos", "Ikeja")
	mustClinic(t, db, "Surulere Family Health", "Lagos", "Surulere")
	mustClinic(t, db, "Ibadan Care Point", "Oyo", "Ibadan North")

	got, err := GetClinic(ctx, db, ikeja.ID)
	if err != nil || got.Name != "Marie Stopes Ikeja" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	// State filter is case-insensitive; LGA narrows further.
	lagos, err := ListClinics(ctx, db, "lagos", "", 0)
	if err != nil || len(lagos) != 2 {
		t.Fatalf("lagos = %d, %v", len(lagos), err)
	}
	one, err := ListClinics(ctx, db, "LAGOS", "IKEJA", 0)
	if err != nil || len(one) != 1 || one[0].ID != ikeja.ID {
		t.Fatalf("ikeja = %+v, %v", one, err)
	}
	capped, err := ListClinics(ctx, db, "", "", 2)
	if err != nil || len(capped) != 2 {
		t.Fatalf("capped = %d, %v", len(capped), err)
	}

	upd, err := UpdateClinic(ctx, db, ikeja.ID, map[string]any{"address": "2 New Road"})
	if err != nil || upd.Address != "2 New Road" {
		t.Fatalf("update: %+v, %v", upd, err)
	}
	if _, err := UpdateClinic(ctx, db, "ghost", map[string]any{"address": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	if err := DeleteClinic(ctx, db, ikeja.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetClinic(ctx, db, ikeja.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("soft-deleted clinic still visible: %v", err)
	}
}

func TestReferral_Lifecycle(t *testing.T) {
	db := newTestDB(t, "repo-referral")
	ctx := context.Background()
	clinic := mustClinic(t, db, "Ikeja Clinic", "Lagos", "Ikeja")

	// Referrals never create their parent implicitly.
	if _, err := CreateReferral(ctx, db, "s1", "ghost", nil, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing clinic: %v", err)
	}

	method := "Postpill"
	r, err := CreateReferral(ctx, db, "s1", clinic.ID, &method, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != "SENT" {
		t.Fatalf("fresh status = %q", r.Status)
	}

	got, err := GetReferral(ctx, db, r.ID)
	if err != nil || got.Clinic.Name != "Ikeja Clinic" {
		t.Fatalf("preload: %+v, %v", got, err)
	}

	list, err := ListReferralsBySession(ctx, db, "s1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %d, %v", len(list), err)
	}

	if err := SetReferralStatus(ctx, db, r.ID, "VISITED"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := SetReferralStatus(ctx, db, "ghost", "VISITED"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("status missing: %v", err)
	}
}

func TestExpireReferrals(t *testing.T) {
	db := newTestDB(t, "repo-referral-expire")
	ctx := context.Background()
	clinic := mustClinic(t, db, "Clinic", "Lagos", "Ikeja")

	old, err := CreateReferral(ctx, db, "s-old", clinic.ID, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Backdate the old referral past the cutoff.
	stale := time.Now().UTC().Add(-60 * 24 * time.Hour)
	if err := db.Model(&domain.Referral{}).Where("id = ?", old.ID).
		Update("created_at", stale).Error; err != nil {
		t.Fatal(err)
	}
	fresh, err := CreateReferral(ctx, db, "s-new", clinic.ID, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	visited, err := CreateReferral(ctx, db, "s-done", clinic.ID, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	db.Model(&domain.Referral{}).Where("id = ?", visited.ID).
		Updates(map[string]any{"status": "VISITED", "created_at": stale})

	n, err := ExpireReferrals(ctx, db, time.Now().UTC().Add(-30*24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("expired = %d, %v", n, err)
	}
	got, _ := GetReferral(ctx, db, old.ID)
	if got.Status != "EXPIRED" {
		t.Fatalf("old status = %q", got.Status)
	}
	got, _ = GetReferral(ctx, db, fresh.ID)
	if got.Status != "SENT" {
		t.Fatalf("fresh status = %q", got.Status)
	}
	got, _ = GetReferral(ctx, db, visited.ID)
	if got.Status != "VISITED" {
		t.Fatalf("visited status = %q", got.Status)
	}
}

func TestFpmInteraction_UpsertAndRollup(t *testing.T) {
	db := newTestDB(t, "repo-fpm")
	ctx := context.Background()

	row, err := RecordFpmInteraction(ctx, db, "s1", "Postpill", "viewed", nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if row.Action != "viewed" {
		t.Fatalf("row: %+v", row)
	}

	// Same (session, method) deepens in place.
	detail := "worried about side effects"
	row, err = RecordFpmInteraction(ctx, db, "s1", "Postpill", "concern", &detail)
	if err != nil {
		t.Fatalf("deepen: %v", err)
	}
	if row.Action != "concern" || row.Detail == nil || *row.Detail != detail {
		t.Fatalf("deepened row: %+v", row)
	}

	if _, err := RecordFpmInteraction(ctx, db, "s1", "Postinor-2", "viewed", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := RecordFpmInteraction(ctx, db, "s2", "Postpill", "selected", nil); err != nil {
		t.Fatal(err)
	}

	list, err := ListFpmInteractions(ctx, db, "s1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %d, %v", len(list), err)
	}

	rollup, err := CountFpmByMethod(ctx, db)
	if err != nil || len(rollup) != 2 {
		t.Fatalf("rollup = %+v, %v", rollup, err)
	}
	if rollup[0].Method != "Postpill" || rollup[0].Count != 2 {
		t.Fatalf("rollup order: %+v", rollup)
	}
}

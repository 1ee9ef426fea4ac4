// Package seed provides demo data for the console API.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/matthewbaird/opsconsole/internal/store"
)

// Order is the order collections are seeded in; visits refer to customers
// and categories.
var Order = []string{"customers", "visitors", "categories", "visits", "reports", "profile"}

// Documents returns the demo records keyed by collection. Each call returns
// fresh maps.
func Documents() map[string][]map[string]any {
	return map[string][]map[string]any{
		"customers": {
			{
				"id": "cus-1001", "first_name": "Jane", "last_name": "Smith", "email": "jane.smith@example.com",
				"phone": "+44 20 7946 0001", "nationality": "GB", "status": "active",
				"address": map[string]any{"street": "12 Harbour Row", "city": "London", "country": "GB"},
			},
			{
				"id": "cus-1002", "first_name": "Omar", "last_name": "Haddad", "email": "omar.haddad@example.com",
				"phone": "+971 4 555 0102", "nationality": "AE", "status": "active",
				"address": map[string]any{"city": "Dubai", "country": "AE"},
			},
			{
				"id": "cus-1003", "first_name": "Lucia", "last_name": "Moreno", "email": "lucia.moreno@example.com",
				"nationality": "ES", "status": "active", "notes": "Prefers morning appointments",
			},
			{
				"id": "cus-1004", "first_name": "Kenji", "last_name": "Watanabe", "email": "kenji.w@example.com",
				"nationality": "JP", "status": "inactive",
			},
		},
		"visitors": {
			{"id": "vis-2001", "first_name": "Priya", "last_name": "Nair", "company": "Northwind", "purpose": "Supplier meeting", "host": "Operations", "status": "expected"},
			{"id": "vis-2002", "first_name": "Tom", "last_name": "Becker", "purpose": "Interview", "host": "HR", "status": "checked_in", "check_in_at": "2025-05-01T09:12:00Z"},
			{"id": "vis-2003", "first_name": "Ana", "last_name": "Silva", "company": "Contoso", "purpose": "Audit", "status": "checked_out", "check_in_at": "2025-04-28T10:00:00Z", "check_out_at": "2025-04-28T15:30:00Z"},
		},
		"categories": {
			{"id": "cat-3001", "name": "Consultation", "code": "CONS", "description": "Initial consultation", "price": 50.0, "duration_minutes": 30, "status": "active"},
			{"id": "cat-3002", "name": "Document Review", "code": "DOCS", "price": 120.0, "duration_minutes": 60, "status": "active"},
			{"id": "cat-3003", "name": "Express Service", "code": "EXPR", "price": 250.0, "duration_minutes": 45, "status": "inactive"},
		},
		"visits": {
			{"id": "vst-4001", "customer_id": "cus-1001", "customer_name": "Jane Smith", "category_id": "cat-3001", "category_name": "Consultation", "visit_date": "2025-05-02", "assigned_to": "A. Clarke", "status": "scheduled"},
			{"id": "vst-4002", "customer_id": "cus-1002", "customer_name": "Omar Haddad", "category_id": "cat-3002", "category_name": "Document Review", "visit_date": "2025-04-20", "follow_up_date": "2025-05-20", "status": "completed"},
			{"id": "vst-4003", "customer_id": "cus-1003", "customer_name": "Lucia Moreno", "category_id": "cat-3001", "category_name": "Consultation", "visit_date": "2025-04-25", "status": "no_show"},
		},
		"reports": {
			{"id": "rep-5001", "title": "April visits", "type": "visits", "period": "month", "status": "generated", "generated_at": "2025-05-01T06:00:00Z"},
		},
		"profile": {
			{
				"id": "me", "first_name": "Alex", "last_name": "Morgan", "email": "alex.morgan@example.com", "job_title": "Operations Lead", "status": "active",
				"preferences": map[string]any{
					"language": "en", "timezone": "Europe/London",
					"notifications": map[string]any{"email": true, "sms": false, "push": true},
				},
			},
		},
	}
}

// Demo loads Documents into st. If customers already exist it skips seeding.
func Demo(ctx context.Context, st *store.Store) error {
	count, err := st.Count(ctx, "customers")
	if err != nil {
		return fmt.Errorf("checking customers: %w", err)
	}
	if count > 0 {
		log.Printf("demo data already seeded (%d customers found), skipping", count)
		return nil
	}

	docs := Documents()
	total := 0
	for _, coll := range Order {
		for _, doc := range docs[coll] {
			if _, err := st.Create(ctx, coll, doc, "system"); err != nil {
				return fmt.Errorf("seeding %s %v: %w", coll, doc["id"], err)
			}
			total++
		}
	}
	log.Printf("seed: created %d demo records", total)
	return nil
}

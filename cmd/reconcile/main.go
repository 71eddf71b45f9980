// Command reconcile recomputes customer and supplier aggregates from live documents.
package main

import (
	"context"
	"time"

	"brass-inventory/internal/repository"
	"brass-inventory/internal/service"
	"brass-inventory/pkg/config"
	"brass-inventory/pkg/database"
	"brass-inventory/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.Get()

	db := database.ConnectDB(cfg)

	parties := service.NewPartyService(
		repository.NewCustomerRepo(db),
		repository.NewSupplierRepo(db),
		repository.NewReportRepo(db),
		db,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := parties.ReconcileBalances(ctx)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}
	log.WithFields(logrus.Fields{
		"customers": res.Customers,
		"suppliers": res.Suppliers,
	}).Info("Party balances reconciled")
}

package main

import (
	"flag"
	"log"
	"os"

	"github.com/portal-apr/portal-apr-backend/cmd"
)

// set at build time with -ldflags "-X main.apiVersion=..."
var (
	apiVersion      = "dev"
	segmentWriteKey = ""
)

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	shouldRunWorker := flag.Bool("worker", false, "Run the background jobs worker")

	var task cmd.MaintenanceTask
	flag.StringVar(&task.CreateAdminEmail, "create-admin", "", "Create an admin user with this email (password in NEW_PASSWORD)")
	flag.StringVar(&task.AdminName, "admin-name", "Administrador", "Name of the admin created with -create-admin")
	flag.StringVar(&task.ResetAdminEmail, "reset-admin-password", "", "Reset the password of the admin with this email (password in NEW_PASSWORD)")
	flag.StringVar(&task.ResetSocioRut, "reset-socio-password", "", "Reset the password of the socio with this rut (password in NEW_PASSWORD)")
	flag.BoolVar(&task.RepairTarifas, "repair-tarifas", false, "Repair the bands of the tarifas")
	flag.BoolVar(&task.DryRun, "dry-run", false, "With -repair-tarifas, only report the repairs")
	flag.StringVar(&task.SeedTarifaFile, "seed-tarifa", "", "Create a tarifa from a YAML file")
	flag.BoolVar(&task.ReconcileOnce, "reconcile", false, "Run one reconciliation pass")
	flag.Parse()

	config := cmd.CompiledConfig{
		Version:         apiVersion,
		SegmentWriteKey: segmentWriteKey,
	}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	if task.IsSet() {
		if err := cmd.RunMaintenance(config, task); err != nil {
			os.Exit(1)
		}
	}

	switch {
	case *shouldRunServer:
		if err := cmd.RunServer(config); err != nil {
			log.Fatal(err)
		}
	case *shouldRunWorker:
		if err := cmd.RunTaskQueue(config); err != nil {
			log.Fatal(err)
		}
	}
}

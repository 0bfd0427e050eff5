// Package main serves the gallery-trigger function locally.
package main

import (
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/rs/zerolog/log"

	_ "github.com/cyber-nic/go-gcp-asset-pub/apps/gallery-trigger"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

func main() {
	utils.LoadDotEnv()

	port := utils.GetStrEnvVar("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		log.Fatal().Err(err).Msg("funcframework.Start")
	}
}

package metrics

import (
	"expvar"
)

// Bundle lifecycle counters.
var (
	bundlesBuilt  = new(expvar.Int)
	bundlesSaved  = new(expvar.Int)
	bundlesLoaded = new(expvar.Int)
)

// Checkpoint and interaction counters.
var (
	checkpointsSaved   = new(expvar.Int)
	checkpointFailures = new(expvar.Int)
	containersBuilt    = new(expvar.Int)
	interruptionsTotal = new(expvar.Int)
	resumesTotal       = new(expvar.Int)
)

func init() {
	expvar.Publish("agentmap_bundles_built_total", bundlesBuilt)
	expvar.Publish("agentmap_bundles_saved_total", bundlesSaved)
	expvar.Publish("agentmap_bundles_loaded_total", bundlesLoaded)
	expvar.Publish("agentmap_checkpoints_saved_total", checkpointsSaved)
	expvar.Publish("agentmap_checkpoint_failures_total", checkpointFailures)
	expvar.Publish("agentmap_containers_built_total", containersBuilt)
	expvar.Publish("agentmap_interruptions_total", interruptionsTotal)
	expvar.Publish("agentmap_resumes_total", resumesTotal)
}

// Bundle helpers
func IncBundlesBuilt()  { bundlesBuilt.Add(1) }
func IncBundlesSaved()  { bundlesSaved.Add(1) }
func IncBundlesLoaded() { bundlesLoaded.Add(1) }

// Checkpoint/interaction helpers
func IncCheckpointsSaved()   { checkpointsSaved.Add(1) }
func IncCheckpointFailures() { checkpointFailures.Add(1) }
func IncContainersBuilt()    { containersBuilt.Add(1) }
func IncInterruptions()      { interruptionsTotal.Add(1) }
func IncResumes()            { resumesTotal.Add(1) }

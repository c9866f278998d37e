package utils

import (
	"context"
	"time"

	cadenceClient "go.uber.org/cadence/client"

	"github.com/standby-inc/standby-api/external/cadence"
)

// FIXME: there will be an import cycle if we use `github.com/standby-inc/standby-api/background/expiry`
const ExpiryTaskListName = "standby-expiry-tasks"

const expiryWorkflowID = "help-request-expiry"

// TriggerExpiryCheck is a helper function to make sure the expiry
// workflow is running and poke it for an immediate check.
func TriggerExpiryCheck(client cadence.CadenceClient, c context.Context) error {
	_, err := client.SignalWithStartWorkflow(c,
		expiryWorkflowID, "expiryCheckSignal", nil,
		cadenceClient.StartWorkflowOptions{
			ID:                           expiryWorkflowID,
			TaskList:                     ExpiryTaskListName,
			ExecutionStartToCloseTimeout: time.Hour,
			WorkflowIDReusePolicy:        cadenceClient.WorkflowIDReusePolicyAllowDuplicate,
		}, "HelpRequestExpiryWorkflow")
	return err
}

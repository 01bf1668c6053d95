package handoff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoute_Financing(t *testing.T) {
	d := Route("what's your APR on a loan?", "", false)
	require.True(t, d.ShouldHandoff)
	require.Equal(t, ReasonFinancing, d.Reason)
}

func TestRoute_AppointmentTimeQueryNoHandoff(t *testing.T) {
	d := Route("what time is my appointment?", "", true)
	require.False(t, d.ShouldHandoff)
}

func TestRoute_NewTestDriveDespiteAppointment(t *testing.T) {
	d := Route("can I come by for another test drive?", "", true)
	require.True(t, d.ShouldHandoff)
	require.Equal(t, ReasonTestDriveScheduling, d.Reason)
}

func TestRoute_ExplicitTimeConfirmed(t *testing.T) {
	d := Route("how about 2pm tomorrow", "", false)
	require.True(t, d.ShouldHandoff)
	require.Equal(t, ReasonTestDriveTimeConfirmed, d.Reason)
}

func TestRoute_NoTriggerNoHandoff(t *testing.T) {
	d := Route("what colors does the Camry come in?", "here are some colors", false)
	require.False(t, d.ShouldHandoff)
}

func TestRoute_ReplyConfirmsAppointment(t *testing.T) {
	d := Route("sounds good", "Your appointment is confirmed for tomorrow at 2pm, see you at the dealership!", false)
	require.True(t, d.ShouldHandoff)
	require.Equal(t, ReasonAppointmentScheduled, d.Reason)
}

func TestCannedMessage_NonEmpty(t *testing.T) {
	require.NotEmpty(t, CannedMessage(ReasonFinancing))
	require.NotEmpty(t, CannedMessage(Reason("unknown")))
}

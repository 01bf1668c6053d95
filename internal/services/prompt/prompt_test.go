package prompt

import (
	"context"
	"testing"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

func TestGenerate_ParsesValidJSON(t *testing.T) {
	payload := `{"message":"Let me connect you with my teammate","auto_send":true,"handoff":true,"handoff_reason":"financing","retrieval_query":"","next_action":"handoff"}`
	b := New(&fakeCompleter{response: payload})

	reply, err := b.Generate(context.Background(), Input{UserMessage: "can I finance with bad credit"})
	require.NoError(t, err)
	require.Equal(t, "Let me connect you with my teammate", reply.Message)
	require.True(t, reply.Handoff)
	require.NotNil(t, reply.HandoffReason)
	require.Equal(t, "financing", *reply.HandoffReason)
}

func TestGenerate_ToleratesSurroundingProse(t *testing.T) {
	payload := "Sure, here you go:\n" + `{"message":"Hey there!","auto_send":true,"handoff":false,"handoff_reason":null,"retrieval_query":"","next_action":"greet"}` + "\nhope that helps"
	b := New(&fakeCompleter{response: payload})

	reply, err := b.Generate(context.Background(), Input{UserMessage: "hey"})
	require.NoError(t, err)
	require.Equal(t, "Hey there!", reply.Message)
}

func TestGenerate_FallsBackOnUnparsableJSON(t *testing.T) {
	b := New(&fakeCompleter{response: "not json at all"})

	v := &domain.Vehicle{Year: 2022, Make: "Honda", Model: "Civic", Price: 21000}
	reply, err := b.Generate(context.Background(), Input{
		UserMessage: "what do you have",
		Vehicles:    []retriever.Candidate{{Vehicle: v, Similarity: 0.9}},
	})
	require.NoError(t, err)
	require.Contains(t, reply.Message, "2022 Honda Civic")
	require.False(t, reply.Handoff)
}

func TestGenerate_FallsBackToNoMatchTemplate(t *testing.T) {
	b := New(&fakeCompleter{response: "garbage"})

	reply, err := b.Generate(context.Background(), Input{UserMessage: "got anything electric"})
	require.NoError(t, err)
	require.NotEmpty(t, reply.Message)
	require.False(t, reply.Handoff)
}

func TestGenerate_RejectsHandoffWithoutReason(t *testing.T) {
	payload := `{"message":"ok","auto_send":true,"handoff":true,"handoff_reason":null,"retrieval_query":"","next_action":"x"}`
	b := New(&fakeCompleter{response: payload})

	reply, err := b.Generate(context.Background(), Input{UserMessage: "hi"})
	require.NoError(t, err)
	require.False(t, reply.Handoff) // fell back since handoff=true needs a reason
}

func TestGenerate_PropagatesLLMError(t *testing.T) {
	b := New(&fakeCompleter{err: context.DeadlineExceeded})

	_, err := b.Generate(context.Background(), Input{UserMessage: "hi"})
	require.Error(t, err)
}

// TestGenerate_FullReplyShape pins the entire Reply struct, not just a few
// fields, with cmp.Diff: a nil HandoffReason and a pointer to an empty
// string compare as different, and any mismatch prints field by field.
func TestGenerate_FullReplyShape(t *testing.T) {
	payload := `{"message":"Hey there!","auto_send":true,"handoff":false,"handoff_reason":null,"retrieval_query":"sedans under 20k","next_action":"greet"}`
	b := New(&fakeCompleter{response: payload})

	reply, err := b.Generate(context.Background(), Input{UserMessage: "hey"})
	require.NoError(t, err)

	want := Reply{
		Message:        "Hey there!",
		AutoSend:       true,
		Handoff:        false,
		HandoffReason:  nil,
		RetrievalQuery: "sedans under 20k",
		NextAction:     "greet",
	}
	if diff := cmp.Diff(want, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
}

package ws

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"mazerace/internal/model"
	"mazerace/internal/testutil"
	"mazerace/internal/transport"
)

type HubSuite struct {
	suite.Suite

	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
}

// newTestClient builds a client with no live socket; only the send
// buffer is exercised here.
func (s *HubSuite) newTestClient(id transport.ConnID, username string) *Client {
	client := NewClient(id, username, nil, testutil.NopLogger())
	s.hub.Register(client)
	return client
}

func drain(c *Client) []model.Event {
	var out []model.Event
	for {
		select {
		case event := <-c.send:
			out = append(out, event)
		default:
			return out
		}
	}
}

func (s *HubSuite) TestRegisterAndUnregister() {
	client := s.newTestClient("conn-a", "alice")
	s.Equal(1, s.hub.ClientCount())

	s.hub.Unregister(client)
	s.Equal(0, s.hub.ClientCount())

	// Closed send channel reads as drained.
	_, open := <-client.send
	s.False(open)
}

func (s *HubSuite) TestUnregisterTwiceIsSafe() {
	client := s.newTestClient("conn-a", "alice")
	s.hub.Unregister(client)
	s.hub.Unregister(client)
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestSendDeliversToClient() {
	client := s.newTestClient("conn-a", "alice")

	s.hub.Send("conn-a", model.Event{Type: model.EventJoinGameAck})

	events := drain(client)
	s.Require().Len(events, 1)
	s.Equal(model.EventJoinGameAck, events[0].Type)
}

func (s *HubSuite) TestSendToUnknownConnIsDropped() {
	s.hub.Send("conn-x", model.Event{Type: model.EventJoinGameAck})
}

func (s *HubSuite) TestBroadcastReachesGroupMembers() {
	a := s.newTestClient("conn-a", "alice")
	b := s.newTestClient("conn-b", "bob")
	c := s.newTestClient("conn-c", "carol")

	s.hub.Join(transport.LobbyGroup, "conn-a")
	s.hub.Join(transport.LobbyGroup, "conn-b")

	s.hub.Broadcast(transport.LobbyGroup, model.Event{Type: model.EventUpdateUserList})

	s.Len(drain(a), 1)
	s.Len(drain(b), 1)
	s.Empty(drain(c))
}

func (s *HubSuite) TestBroadcastHonorsExclusions() {
	a := s.newTestClient("conn-a", "alice")
	b := s.newTestClient("conn-b", "bob")

	group := transport.RoomGroup("ROOM01")
	s.hub.Join(group, "conn-a")
	s.hub.Join(group, "conn-b")

	s.hub.Broadcast(group, model.Event{Type: model.EventPlayerJoined}, "conn-b")

	s.Len(drain(a), 1)
	s.Empty(drain(b))
}

func (s *HubSuite) TestLeaveRemovesFromGroup() {
	a := s.newTestClient("conn-a", "alice")

	group := transport.RoomGroup("ROOM01")
	s.hub.Join(group, "conn-a")
	s.Equal(1, s.hub.GroupSize(group))

	s.hub.Leave(group, "conn-a")
	s.Equal(0, s.hub.GroupSize(group))

	s.hub.Broadcast(group, model.Event{Type: model.EventPlayerMoved})
	s.Empty(drain(a))
}

func (s *HubSuite) TestJoinUnknownConnIsIgnored() {
	s.hub.Join(transport.LobbyGroup, "conn-x")
	s.Equal(0, s.hub.GroupSize(transport.LobbyGroup))
}

func (s *HubSuite) TestUnregisterRemovesFromAllGroups() {
	client := s.newTestClient("conn-a", "alice")
	s.hub.Join(transport.LobbyGroup, "conn-a")
	s.hub.Join(transport.RoomGroup("ROOM01"), "conn-a")

	s.hub.Unregister(client)

	s.Equal(0, s.hub.GroupSize(transport.LobbyGroup))
	s.Equal(0, s.hub.GroupSize(transport.RoomGroup("ROOM01")))
}

func (s *HubSuite) TestFullBufferDropsInsteadOfBlocking() {
	client := s.newTestClient("conn-a", "alice")

	for i := 0; i < sendBufferSize+10; i++ {
		s.hub.Send("conn-a", model.Event{Type: model.EventPlayerMoved})
	}

	s.Len(drain(client), sendBufferSize)
}

package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/BAQIC/emulate-server/agent"
	"github.com/BAQIC/emulate-server/assignment"
	"github.com/BAQIC/emulate-server/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	Id uuid.UUID `bun:"id,pk,type:uuid"`

	Source string `bun:"source,notnull"`
	Qubits int    `bun:"qubits,notnull"`
	Depth  int    `bun:"depth,notnull"`
	Shots  int    `bun:"shots,notnull"`
	Mode   string `bun:"mode,notnull"`

	ExecShots  int             `bun:"exec_shots,notnull"`
	VExecShots int             `bun:"v_exec_shots,notnull"`
	Result     json.RawMessage `bun:"result,type:jsonb,nullzero"`

	Status string `bun:"status,notnull"`

	CreatedTime time.Time `bun:"created_time,notnull"`
	UpdatedTime time.Time `bun:"updated_time,notnull"`
}

func toJob(m *jobModel) (*job.Job, error) {
	status, err := job.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	mode, err := job.ParseMode(m.Mode)
	if err != nil {
		return nil, err
	}
	return &job.Job{
		Id:          m.Id,
		Source:      m.Source,
		Qubits:      m.Qubits,
		Depth:       m.Depth,
		Shots:       m.Shots,
		Mode:        mode,
		ExecShots:   m.ExecShots,
		VExecShots:  m.VExecShots,
		Result:      m.Result,
		Status:      status,
		CreatedTime: m.CreatedTime,
		UpdatedTime: m.UpdatedTime,
	}, nil
}

func fromJob(j *job.Job) *jobModel {
	return &jobModel{
		Id:          j.Id,
		Source:      j.Source,
		Qubits:      j.Qubits,
		Depth:       j.Depth,
		Shots:       j.Shots,
		Mode:        j.Mode.String(),
		ExecShots:   j.ExecShots,
		VExecShots:  j.VExecShots,
		Result:      j.Result,
		Status:      j.Status.String(),
		CreatedTime: j.CreatedTime,
		UpdatedTime: j.UpdatedTime,
	}
}

type agentModel struct {
	bun.BaseModel `bun:"table:agents,alias:a"`

	Id uuid.UUID `bun:"id,pk,type:uuid"`

	Ip   string `bun:"ip,notnull"`
	Port int    `bun:"port,notnull"`

	QubitCount   int `bun:"qubit_count,notnull"`
	QubitIdle    int `bun:"qubit_idle,notnull"`
	CircuitDepth int `bun:"circuit_depth,notnull"`

	Status string `bun:"status,notnull"`
}

func toAgent(m *agentModel) (*agent.Agent, error) {
	status, err := agent.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &agent.Agent{
		Id:           m.Id,
		Ip:           m.Ip,
		Port:         m.Port,
		QubitCount:   m.QubitCount,
		QubitIdle:    m.QubitIdle,
		CircuitDepth: m.CircuitDepth,
		Status:       status,
	}, nil
}

func fromAgent(a *agent.Agent) *agentModel {
	return &agentModel{
		Id:           a.Id,
		Ip:           a.Ip,
		Port:         a.Port,
		QubitCount:   a.QubitCount,
		QubitIdle:    a.QubitIdle,
		CircuitDepth: a.CircuitDepth,
		Status:       a.Status.String(),
	}
}

type assignmentModel struct {
	bun.BaseModel `bun:"table:assignments,alias:asg"`

	Id      uuid.UUID `bun:"id,pk,type:uuid"`
	JobId   uuid.UUID `bun:"job_id,notnull"`
	AgentId uuid.UUID `bun:"agent_id,notnull"`

	Shots int `bun:"shots,notnull"`

	Status string `bun:"status,notnull"`

	CreatedTime time.Time `bun:"created_time,notnull"`
	UpdatedTime time.Time `bun:"updated_time,notnull"`
}

func toAssignment(m *assignmentModel) (*assignment.Assignment, error) {
	status, err := assignment.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &assignment.Assignment{
		Id:          m.Id,
		JobId:       m.JobId,
		AgentId:     m.AgentId,
		Shots:       m.Shots,
		Status:      status,
		CreatedTime: m.CreatedTime,
		UpdatedTime: m.UpdatedTime,
	}, nil
}

func fromAssignment(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		Id:          a.Id,
		JobId:       a.JobId,
		AgentId:     a.AgentId,
		Shots:       a.Shots,
		Status:      a.Status.String(),
		CreatedTime: a.CreatedTime,
		UpdatedTime: a.UpdatedTime,
	}
}

package github

// Field values are selected by name through variables so the configured field
// names reach the query without string building.
const queryItems = `query ($login: String!, $number: Int!, $first: Int!, $next: String,
  $iteration: String!, $team: String!, $status: String!, $qa: String!, $complexity: String!) {
  organization(login: $login) {
    projectV2(number: $number) {
      items(first: $first, after: $next, orderBy: {field: POSITION, direction: ASC}) {
        pageInfo { endCursor hasNextPage }
        nodes {
          iteration: fieldValueByName(name: $iteration) {
            ... on ProjectV2ItemFieldIterationValue { value: title }
          }
          team: fieldValueByName(name: $team) {
            ... on ProjectV2ItemFieldSingleSelectValue { value: name color }
          }
          status: fieldValueByName(name: $status) {
            ... on ProjectV2ItemFieldSingleSelectValue { value: name color }
          }
          qa: fieldValueByName(name: $qa) {
            ... on ProjectV2ItemFieldSingleSelectValue { value: name color }
          }
          complexity: fieldValueByName(name: $complexity) {
            ... on ProjectV2ItemFieldSingleSelectValue { value: name }
            ... on ProjectV2ItemFieldNumberValue { number }
          }
          content {
            ... on Issue { assignees(first: 10) { nodes { login } } }
            ... on PullRequest { assignees(first: 10) { nodes { login } } }
          }
        }
      }
    }
  }
}`

const queryIterations = `query ($login: String!, $number: Int!, $field: String!) {
  organization(login: $login) {
    projectV2(number: $number) {
      field(name: $field) {
        ... on ProjectV2IterationField {
          configuration {
            iterations { title startDate duration }
            completedIterations { title startDate duration }
          }
        }
      }
    }
  }
}`

const queryEnumeration = `query ($login: String!, $number: Int!, $field: String!) {
  organization(login: $login) {
    projectV2(number: $number) {
      field(name: $field) {
        ... on ProjectV2SingleSelectField { options { name color } }
      }
    }
  }
}`
